package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/stablerate/keepers/pkg/httpclient"
	"github.com/stablerate/keepers/pkg/logging"
)

// Notifier delivers one-line operational messages to an external sink.
// Delivery is best effort; callers never fail on a notification error.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// WebhookNotifier posts messages as JSON to a webhook endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *httpclient.HTTPClient
	logger     logging.Logger
}

var _ Notifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(url string, logger logging.Logger) (*WebhookNotifier, error) {
	httpClient, err := httpclient.NewHTTPClient(httpclient.DefaultHTTPRetryConfig(), logger)
	if err != nil {
		return nil, err
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (n *WebhookNotifier) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	resp, err := n.httpClient.Post(ctx, n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification sink rejected with status %d", resp.StatusCode)
	}
	return nil
}

// NopNotifier discards messages. Used when no sink is configured.
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) Send(ctx context.Context, message string) error { return nil }
