package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stablerate/keepers/pkg/logging"
)

// TestRetry tests the basic retry functionality
func TestRetry(t *testing.T) {
	logger := logging.NoopLogger{}

	tests := []struct {
		name           string
		operation      func() (string, error)
		config         *RetryConfig
		expectedResult string
		expectError    bool
	}{
		{
			name: "success on first try",
			operation: func() (string, error) {
				return "success", nil
			},
			config:         DefaultRetryConfig(),
			expectedResult: "success",
			expectError:    false,
		},
		{
			name: "failure after all retries",
			operation: func() (string, error) {
				return "", errors.New("operation failed")
			},
			config: &RetryConfig{
				MaxRetries:      2,
				InitialDelay:    10 * time.Millisecond,
				MaxDelay:        100 * time.Millisecond,
				BackoffFactor:   2.0,
				JitterFactor:    0.1,
				LogRetryAttempt: false,
			},
			expectedResult: "",
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Retry(context.Background(), tt.operation, tt.config, logger)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedResult, result)
		})
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	logger := logging.NoopLogger{}
	attempts := 0
	operation := func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("temporary error")
		}
		return 42, nil
	}

	config := &RetryConfig{
		MaxRetries:      5,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		BackoffFactor:   2.0,
		JitterFactor:    0,
		LogRetryAttempt: false,
	}

	result, err := Retry(context.Background(), operation, config, logger)
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, attempts)
}

func TestRetryShouldRetryPredicate(t *testing.T) {
	logger := logging.NoopLogger{}
	permanent := errors.New("permanent error")
	attempts := 0

	config := &RetryConfig{
		MaxRetries:      5,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		BackoffFactor:   2.0,
		JitterFactor:    0,
		LogRetryAttempt: false,
		ShouldRetry: func(err error, attempt int) bool {
			return !errors.Is(err, permanent)
		},
	}

	_, err := Retry(context.Background(), func() (string, error) {
		attempts++
		return "", permanent
	}, config, logger)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetryContextCancellation(t *testing.T) {
	logger := logging.NoopLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, func() (string, error) {
		return "", errors.New("should not matter")
	}, DefaultRetryConfig(), logger)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestJitteredDelay(t *testing.T) {
	base := time.Second

	assert.Equal(t, base, jitteredDelay(base, 0))

	for i := 0; i < 100; i++ {
		d := jitteredDelay(base, 0.5)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/2)
	}
}

func TestCalculateNextDelay(t *testing.T) {
	tests := []struct {
		name     string
		current  time.Duration
		factor   float64
		max      time.Duration
		expected time.Duration
	}{
		{"doubles", time.Second, 2.0, time.Minute, 2 * time.Second},
		{"capped at max", 40 * time.Second, 2.0, time.Minute, time.Minute},
		{"factor one", time.Second, 1.0, time.Minute, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateNextDelay(tt.current, tt.factor, tt.max))
		})
	}
}
