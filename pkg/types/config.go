package types

import (
	"encoding/json"
	"fmt"
)

// DeploymentConfig is one keeper deployment instance, read from a JSON
// config file. Raw holds the exact file bytes; the identity hash that makes
// reconciliation idempotent is derived from them, so they must never be
// re-marshaled.
type DeploymentConfig struct {
	Domain  string                 `json:"domain"`
	Args    map[string]interface{} `json:"args"`
	Secrets map[string]string      `json:"secrets"`
	Trigger TriggerSpec            `json:"trigger"`

	// Set by the loader, not part of the file.
	Label string `json:"-"`
	Raw   []byte `json:"-"`
}

// ParseDeploymentConfig decodes a config file, keeping the raw bytes.
func ParseDeploymentConfig(label string, raw []byte) (DeploymentConfig, error) {
	var cfg DeploymentConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return DeploymentConfig{}, fmt.Errorf("failed to parse deployment config %s: %w", label, err)
	}
	cfg.Label = label
	cfg.Raw = raw
	return cfg, nil
}

// KeeperDefinition groups the deployment configs of one keeper type with
// the content address of its published executable logic.
type KeeperDefinition struct {
	Name    string
	CodeCID string
	Configs []DeploymentConfig
}

// CodeDeploymentIndex maps keeper type name to the content address of its
// most recently published executable logic.
type CodeDeploymentIndex map[string]string

// CIDFor returns the content address for a keeper type, with ok=false when
// the keeper has no published code.
func (ix CodeDeploymentIndex) CIDFor(keeper string) (string, bool) {
	cid, ok := ix[keeper]
	return cid, ok && cid != ""
}
