package automate

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stablerate/keepers/pkg/triggers"
	"github.com/stablerate/keepers/pkg/types"
)

// MockClient is a mock implementation of the Client interface
type MockClient struct {
	mock.Mock

	Net types.Network
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Network() types.Network {
	if m.Net != "" {
		return m.Net
	}
	return types.NetworkEthereum
}

func (m *MockClient) ActiveTasks(ctx context.Context) ([]Task, error) {
	args := m.Called(ctx)
	if tasks, ok := args.Get(0).([]Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) CreateTask(ctx context.Context, name string, codeCID string, trigger triggers.Payload) (Task, error) {
	args := m.Called(ctx, name, codeCID, trigger)
	return args.Get(0).(Task), args.Error(1)
}

func (m *MockClient) CancelTask(ctx context.Context, taskID [32]byte) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockClient) SetSecrets(ctx context.Context, taskID [32]byte, secrets map[string]string) error {
	args := m.Called(ctx, taskID, secrets)
	return args.Error(0)
}
