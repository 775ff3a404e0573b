package deployer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stablerate/keepers/pkg/types"
)

// LoadCodeIndex reads the keeper-name to content-address mapping produced
// by the code publishing step. Read-only for the reconciler.
func LoadCodeIndex(path string) (types.CodeDeploymentIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code index %s: %w", path, err)
	}

	var index types.CodeDeploymentIndex
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("failed to parse code index %s: %w", path, err)
	}
	return index, nil
}

// LoadDeployedState reads the last-deployed content address per keeper.
// A missing file means nothing has been deployed yet.
func LoadDeployedState(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deployed state %s: %w", path, err)
	}

	var state map[string]string
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to parse deployed state %s: %w", path, err)
	}
	return state, nil
}

// SaveDeployedState rewrites the deployed-state file after a successful
// deployment.
func SaveDeployedState(path string, state map[string]string) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployed state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write deployed state %s: %w", path, err)
	}
	return nil
}
