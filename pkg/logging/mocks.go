package logging

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger is a mock implementation of the Logger interface
type MockLogger struct {
	mock.Mock
}

// SetupDefaultExpectations sets up common logger mock expectations that accept
// any arguments. Useful for tests that don't assert on specific logging calls.
func (m *MockLogger) SetupDefaultExpectations() {
	methods := []string{
		"Debug", "Info", "Warn", "Error",
		"Debugf", "Infof", "Warnf", "Errorf",
	}
	for _, method := range methods {
		m.On(method, mock.Anything).Maybe().Return()
		m.On(method, mock.Anything, mock.Anything).Maybe().Return()
		m.On(method, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
		m.On(method, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
		m.On(method, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
		m.On(method, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
		m.On(method, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	}
	m.On("With", mock.Anything).Maybe().Return(m)
	m.On("With", mock.Anything, mock.Anything).Maybe().Return(m)
}

func (m *MockLogger) Debug(msg string, tags ...any) {
	args := append([]interface{}{msg}, tags...)
	m.Called(args...)
}

func (m *MockLogger) Info(msg string, tags ...any) {
	args := append([]interface{}{msg}, tags...)
	m.Called(args...)
}

func (m *MockLogger) Warn(msg string, tags ...any) {
	args := append([]interface{}{msg}, tags...)
	m.Called(args...)
}

func (m *MockLogger) Error(msg string, tags ...any) {
	args := append([]interface{}{msg}, tags...)
	m.Called(args...)
}

func (m *MockLogger) Fatal(msg string, tags ...any) {
	args := append([]interface{}{msg}, tags...)
	m.Called(args...)
}

func (m *MockLogger) Debugf(template string, args ...interface{}) {
	callArgs := append([]interface{}{template}, args...)
	m.Called(callArgs...)
}

func (m *MockLogger) Infof(template string, args ...interface{}) {
	callArgs := append([]interface{}{template}, args...)
	m.Called(callArgs...)
}

func (m *MockLogger) Warnf(template string, args ...interface{}) {
	callArgs := append([]interface{}{template}, args...)
	m.Called(callArgs...)
}

func (m *MockLogger) Errorf(template string, args ...interface{}) {
	callArgs := append([]interface{}{template}, args...)
	m.Called(callArgs...)
}

func (m *MockLogger) Fatalf(template string, args ...interface{}) {
	callArgs := append([]interface{}{template}, args...)
	m.Called(callArgs...)
}

func (m *MockLogger) With(tags ...any) Logger {
	callArgs := make([]interface{}, len(tags))
	copy(callArgs, tags)
	ret := m.Called(callArgs...)
	if logger, ok := ret.Get(0).(Logger); ok {
		return logger
	}
	return m
}

// NoopLogger is a Logger that discards everything. Handy for tests that
// construct collaborators directly.
type NoopLogger struct{}

var _ Logger = (*NoopLogger)(nil)

func (NoopLogger) Debug(msg string, tags ...any)               {}
func (NoopLogger) Info(msg string, tags ...any)                {}
func (NoopLogger) Warn(msg string, tags ...any)                {}
func (NoopLogger) Error(msg string, tags ...any)               {}
func (NoopLogger) Fatal(msg string, tags ...any)               {}
func (NoopLogger) Debugf(template string, args ...interface{}) {}
func (NoopLogger) Infof(template string, args ...interface{})  {}
func (NoopLogger) Warnf(template string, args ...interface{})  {}
func (NoopLogger) Errorf(template string, args ...interface{}) {}
func (NoopLogger) Fatalf(template string, args ...interface{}) {}
func (n NoopLogger) With(tags ...any) Logger                   { return n }
