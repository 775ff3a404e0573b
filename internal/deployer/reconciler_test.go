package deployer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stablerate/keepers/pkg/automate"
	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/triggers"
	"github.com/stablerate/keepers/pkg/types"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func blockConfig(t *testing.T, label, domain string, secrets map[string]string) types.DeploymentConfig {
	t.Helper()
	raw := []byte(`{"domain":"` + domain + `","trigger":{"type":"block"}}`)
	cfg, err := types.ParseDeploymentConfig(label, raw)
	require.NoError(t, err)
	cfg.Secrets = secrets
	return cfg
}

func newTestReconciler(clients map[types.Network]automate.Client, confirm ConfirmFunc) *Reconciler {
	registry := triggers.NewRegistry("testdata")
	return NewReconciler(clients, registry, nil, confirm, logging.NoopLogger{})
}

func singleClient(client automate.Client) map[types.Network]automate.Client {
	return map[types.Network]automate.Client{types.NetworkEthereum: client}
}

func TestReconcileCreatesMissingTask(t *testing.T) {
	cfg := blockConfig(t, "mainnet", "ethereum", nil)
	definition := types.KeeperDefinition{Name: "ratewatch", CodeCID: testCID, Configs: []types.DeploymentConfig{cfg}}
	name := TaskName("ratewatch", "mainnet", IdentityHash(cfg.Raw, testCID))

	client := &automate.MockClient{Net: types.NetworkEthereum}
	created := automate.Task{ID: [32]byte{1}, Name: name, Network: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{}, nil)
	client.On("CreateTask", mock.Anything, name, testCID, triggers.Payload{Kind: "block"}).Return(created, nil)
	client.On("SetSecrets", mock.Anything, created.ID, map[string]string{}).Return(nil)

	summary, err := newTestReconciler(singleClient(client), AlwaysConfirm).Run(context.Background(), []types.KeeperDefinition{definition})
	require.NoError(t, err)

	assert.Equal(t, Summary{Created: 1}, summary)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "CancelTask", mock.Anything, mock.Anything)
}

func TestReconcileIsIdempotent(t *testing.T) {
	cfg := blockConfig(t, "mainnet", "ethereum", nil)
	definition := types.KeeperDefinition{Name: "ratewatch", CodeCID: testCID, Configs: []types.DeploymentConfig{cfg}}
	name := TaskName("ratewatch", "mainnet", IdentityHash(cfg.Raw, testCID))

	// Second run: the task created by the first run is active and matches.
	client := &automate.MockClient{Net: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{
		{ID: [32]byte{1}, Name: name, Network: types.NetworkEthereum},
	}, nil)

	summary, err := newTestReconciler(singleClient(client), AlwaysConfirm).Run(context.Background(), []types.KeeperDefinition{definition})
	require.NoError(t, err)

	assert.Equal(t, Summary{Unchanged: 1}, summary)
	client.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CancelTask", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "SetSecrets", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileSkipsUnsupportedDomain(t *testing.T) {
	cfg := blockConfig(t, "solana-main", "solana", nil)
	definition := types.KeeperDefinition{Name: "ratewatch", CodeCID: testCID, Configs: []types.DeploymentConfig{cfg}}

	client := &automate.MockClient{Net: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{}, nil)

	summary, err := newTestReconciler(singleClient(client), AlwaysConfirm).Run(context.Background(), []types.KeeperDefinition{definition})
	require.NoError(t, err)

	assert.Equal(t, Summary{Skipped: 1}, summary)
	client.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileSkipsConfigWithMissingSecret(t *testing.T) {
	cfg := blockConfig(t, "mainnet", "ethereum", map[string]string{
		"RPC_KEY": "TEST_RECONCILER_UNSET_ENV_VAR",
	})
	definition := types.KeeperDefinition{Name: "ratewatch", CodeCID: testCID, Configs: []types.DeploymentConfig{cfg}}

	client := &automate.MockClient{Net: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{}, nil)

	summary, err := newTestReconciler(singleClient(client), AlwaysConfirm).Run(context.Background(), []types.KeeperDefinition{definition})
	require.NoError(t, err)

	assert.Equal(t, Summary{Skipped: 1}, summary)
	client.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "SetSecrets", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileReplacesTaskWhenConfigChanges(t *testing.T) {
	oldRaw := []byte(`{"domain":"ethereum","trigger":{"type":"block"}} `)
	oldName := TaskName("ratewatch", "mainnet", IdentityHash(oldRaw, testCID))
	oldID := [32]byte{0xaa}

	// One byte of the config file changed since the old task was deployed.
	cfg := blockConfig(t, "mainnet", "ethereum", nil)
	definition := types.KeeperDefinition{Name: "ratewatch", CodeCID: testCID, Configs: []types.DeploymentConfig{cfg}}
	newName := TaskName("ratewatch", "mainnet", IdentityHash(cfg.Raw, testCID))
	require.NotEqual(t, oldName, newName)

	client := &automate.MockClient{Net: types.NetworkEthereum}
	created := automate.Task{ID: [32]byte{0xbb}, Name: newName, Network: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{
		{ID: oldID, Name: oldName, Network: types.NetworkEthereum},
	}, nil)
	client.On("CreateTask", mock.Anything, newName, testCID, triggers.Payload{Kind: "block"}).Return(created, nil)
	client.On("SetSecrets", mock.Anything, created.ID, map[string]string{}).Return(nil)
	client.On("CancelTask", mock.Anything, oldID).Return(nil)

	summary, err := newTestReconciler(singleClient(client), AlwaysConfirm).Run(context.Background(), []types.KeeperDefinition{definition})
	require.NoError(t, err)

	assert.Equal(t, Summary{Created: 1, Cancelled: 1}, summary)
	client.AssertExpectations(t)
}

func TestReconcileCancelsOrphanedTasks(t *testing.T) {
	orphanID := [32]byte{0xcc}

	client := &automate.MockClient{Net: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{
		{ID: orphanID, Name: "ratewatch/removed deadbeef0123", Network: types.NetworkEthereum},
	}, nil)
	client.On("CancelTask", mock.Anything, orphanID).Return(nil)

	summary, err := newTestReconciler(singleClient(client), AlwaysConfirm).Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, Summary{Cancelled: 1}, summary)
	client.AssertExpectations(t)
}

func TestReconcileRespectsDeclinedConfirmation(t *testing.T) {
	cfg := blockConfig(t, "mainnet", "ethereum", nil)
	definition := types.KeeperDefinition{Name: "ratewatch", CodeCID: testCID, Configs: []types.DeploymentConfig{cfg}}

	client := &automate.MockClient{Net: types.NetworkEthereum}
	client.On("ActiveTasks", mock.Anything).Return([]automate.Task{
		{ID: [32]byte{0xdd}, Name: "ratewatch/old cafecafe0123", Network: types.NetworkEthereum},
	}, nil)

	declineAll := func(string) bool { return false }
	summary, err := newTestReconciler(singleClient(client), declineAll).Run(context.Background(), []types.KeeperDefinition{definition})
	require.NoError(t, err)

	assert.Equal(t, Summary{Skipped: 1}, summary)
	client.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CancelTask", mock.Anything, mock.Anything)
}
