package deployer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/types"
)

// LoadKeeperDefinitions walks `<configDir>/<keeper>/*.json` and pairs each
// keeper directory with its published code content address. Keeper types
// without an index entry are skipped with a diagnostic; they have nothing
// deployable.
func LoadKeeperDefinitions(configDir string, index types.CodeDeploymentIndex, logger logging.Logger) ([]types.KeeperDefinition, error) {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory %s: %w", configDir, err)
	}

	var definitions []types.KeeperDefinition
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		keeper := entry.Name()

		cid, ok := index.CIDFor(keeper)
		if !ok {
			logger.Warn("Skipping keeper with no published code", "keeper", keeper)
			continue
		}

		configs, err := loadConfigFiles(filepath.Join(configDir, keeper), logger)
		if err != nil {
			return nil, err
		}
		if len(configs) == 0 {
			continue
		}

		definitions = append(definitions, types.KeeperDefinition{
			Name:    keeper,
			CodeCID: cid,
			Configs: configs,
		})
	}

	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].Name < definitions[j].Name
	})
	return definitions, nil
}

func loadConfigFiles(dir string, logger logging.Logger) ([]types.DeploymentConfig, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read keeper directory %s: %w", dir, err)
	}

	var configs []types.DeploymentConfig
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file.Name(), err)
		}

		label := strings.TrimSuffix(file.Name(), ".json")
		cfg, err := types.ParseDeploymentConfig(label, raw)
		if err != nil {
			// A malformed or unknown-trigger config skips that file only.
			logger.Warn("Skipping unparseable config", "file", file.Name(), "error", err)
			continue
		}
		configs = append(configs, cfg)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Label < configs[j].Label
	})
	return configs, nil
}
