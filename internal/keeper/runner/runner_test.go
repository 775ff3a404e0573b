package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/types"
)

func noopHandler(name string) Handler {
	return HandlerFunc{
		HandlerName: name,
		Func:        func(ctx context.Context) error { return nil },
	}
}

func TestRegisterCronTrigger(t *testing.T) {
	r := NewRunner(logging.NoopLogger{})
	err := r.Register(types.CronTrigger{Expression: "*/5 * * * *"}, noopHandler("rates"))
	require.NoError(t, err)
}

func TestRegisterInvalidCronExpression(t *testing.T) {
	r := NewRunner(logging.NoopLogger{})
	err := r.Register(types.CronTrigger{Expression: "not a schedule"}, noopHandler("rates"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestRegisterTimeTrigger(t *testing.T) {
	r := NewRunner(logging.NoopLogger{})
	err := r.Register(types.TimeTrigger{IntervalMs: 60000}, noopHandler("rates"))
	require.NoError(t, err)
}

func TestRegisterRejectsNonPositiveInterval(t *testing.T) {
	r := NewRunner(logging.NoopLogger{})

	err := r.Register(types.TimeTrigger{IntervalMs: 0}, noopHandler("rates"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive interval")

	err = r.Register(types.TimeTrigger{IntervalMs: -500}, noopHandler("rates"))
	require.Error(t, err)
}

func TestRegisterRejectsPlatformTriggers(t *testing.T) {
	r := NewRunner(logging.NoopLogger{})

	err := r.Register(types.BlockTrigger{}, noopHandler("rates"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "automation platform")

	err = r.Register(types.EventTrigger{Address: "0x0"}, noopHandler("rates"))
	require.Error(t, err)
}

func TestRunnerExecutesHandler(t *testing.T) {
	r := NewRunner(logging.NoopLogger{})

	var runs atomic.Int64
	handler := HandlerFunc{
		HandlerName: "counter",
		Func: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}
	require.NoError(t, r.Register(types.TimeTrigger{IntervalMs: 50}, handler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestHealthEndpoint(t *testing.T) {
	recorder := httptest.NewRecorder()
	handleHealth(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
