package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/retry"
)

func fastConfig() *HTTPRetryConfig {
	return &HTTPRetryConfig{
		RetryConfig: &retry.RetryConfig{
			MaxRetries:      3,
			InitialDelay:    time.Millisecond,
			MaxDelay:        10 * time.Millisecond,
			BackoffFactor:   2.0,
			JitterFactor:    0,
			LogRetryAttempt: false,
		},
		Timeout:         2 * time.Second,
		IdleConnTimeout: 2 * time.Second,
		MaxResponseSize: 4096,
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(fastConfig(), logging.NoopLogger{})
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(fastConfig(), logging.NoopLogger{})
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostResendsBodyOnRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"hello":"world"}`, string(body))
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(fastConfig(), logging.NoopLogger{})
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Post(context.Background(), srv.URL, "application/json",
		strings.NewReader(`{"hello":"world"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.Timeout = 0
	_, err := NewHTTPClient(cfg, logging.NoopLogger{})
	assert.Error(t, err)
}

