package deployer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/types"
)

func writeConfig(t *testing.T, dir, keeper, name, content string) {
	t.Helper()
	keeperDir := filepath.Join(dir, keeper)
	require.NoError(t, os.MkdirAll(keeperDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(keeperDir, name), []byte(content), 0644))
}

func TestLoadKeeperDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ratewatch", "mainnet.json", `{"domain":"ethereum","trigger":{"type":"block"}}`)
	writeConfig(t, dir, "ratewatch", "arbitrum.json", `{"domain":"arbitrum","trigger":{"type":"time","intervalMs":60000}}`)
	writeConfig(t, dir, "unpublished", "mainnet.json", `{"domain":"ethereum","trigger":{"type":"block"}}`)

	index := types.CodeDeploymentIndex{"ratewatch": testCID}

	definitions, err := LoadKeeperDefinitions(dir, index, logging.NoopLogger{})
	require.NoError(t, err)

	// The keeper without a published code address is skipped entirely.
	require.Len(t, definitions, 1)
	assert.Equal(t, "ratewatch", definitions[0].Name)
	assert.Equal(t, testCID, definitions[0].CodeCID)
	require.Len(t, definitions[0].Configs, 2)

	// Configs come back sorted by label for a stable processing order.
	assert.Equal(t, "arbitrum", definitions[0].Configs[0].Label)
	assert.Equal(t, "mainnet", definitions[0].Configs[1].Label)
}

func TestLoadKeeperDefinitionsSkipsUnparseableConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ratewatch", "good.json", `{"domain":"ethereum","trigger":{"type":"block"}}`)
	writeConfig(t, dir, "ratewatch", "bad-trigger.json", `{"domain":"ethereum","trigger":{"type":"webhook"}}`)
	writeConfig(t, dir, "ratewatch", "not-json.json", `{{{`)

	index := types.CodeDeploymentIndex{"ratewatch": testCID}

	definitions, err := LoadKeeperDefinitions(dir, index, logging.NoopLogger{})
	require.NoError(t, err)

	require.Len(t, definitions, 1)
	require.Len(t, definitions[0].Configs, 1)
	assert.Equal(t, "good", definitions[0].Configs[0].Label)
}

func TestLoadCodeIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code-index.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ratewatch":"`+testCID+`"}`), 0644))

	index, err := LoadCodeIndex(path)
	require.NoError(t, err)

	cid, ok := index.CIDFor("ratewatch")
	assert.True(t, ok)
	assert.Equal(t, testCID, cid)

	_, ok = index.CIDFor("missing")
	assert.False(t, ok)
}

func TestDeployedStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "deployed-state.json")

	// Missing file means nothing deployed yet.
	state, err := LoadDeployedState(path)
	require.NoError(t, err)
	assert.Empty(t, state)

	state["ratewatch"] = testCID
	require.NoError(t, SaveDeployedState(path, state))

	reloaded, err := LoadDeployedState(path)
	require.NoError(t, err)
	assert.Equal(t, state, reloaded)
}
