package automate

import (
	"context"

	"github.com/stablerate/keepers/pkg/triggers"
	"github.com/stablerate/keepers/pkg/types"
)

// Task is a live task on the automation platform.
type Task struct {
	ID      [32]byte
	Name    string
	Network types.Network
}

// Client is the automation platform boundary: task listing, creation and
// cancellation settle on chain; secret storage is an API call against the
// platform. One client is bound to one network.
type Client interface {
	// Network returns the network this client operates on.
	Network() types.Network

	// ActiveTasks lists the tasks currently registered for the signing
	// address on this network.
	ActiveTasks(ctx context.Context) ([]Task, error)

	// CreateTask registers a new task and waits for on-chain confirmation.
	CreateTask(ctx context.Context, name string, codeCID string, trigger triggers.Payload) (Task, error)

	// CancelTask cancels a task and waits for on-chain confirmation.
	CancelTask(ctx context.Context, taskID [32]byte) error

	// SetSecrets stores the resolved secret values for a task with the
	// platform. This is a separate call from CreateTask; a crash between
	// the two leaves a task without secrets.
	SetSecrets(ctx context.Context, taskID [32]byte, secrets map[string]string) error
}
