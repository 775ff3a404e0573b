package ipfs

import (
	"context"
	"fmt"
	"strings"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/stablerate/keepers/pkg/env"
	"github.com/stablerate/keepers/pkg/httpclient"
	"github.com/stablerate/keepers/pkg/logging"
)

// Resolver verifies that a content address resolves to published keeper
// code before a config referencing it is deployed.
type Resolver interface {
	Verify(ctx context.Context, cid string) error
}

// Config selects the resolution backend. With an API URL the node is
// queried directly; otherwise a gateway HEAD request is used.
type Config struct {
	APIURL     string
	GatewayURL string
}

type client struct {
	config     Config
	sh         *shell.Shell
	httpClient *httpclient.HTTPClient
	logger     logging.Logger
}

var _ Resolver = (*client)(nil)

func NewClient(config Config, logger logging.Logger) (Resolver, error) {
	if config.APIURL == "" && config.GatewayURL == "" {
		return nil, fmt.Errorf("ipfs client needs an API URL or a gateway URL")
	}

	c := &client{
		config: config,
		logger: logger,
	}

	if config.APIURL != "" {
		c.sh = shell.NewShell(config.APIURL)
	}
	if config.GatewayURL != "" {
		httpClient, err := httpclient.NewHTTPClient(httpclient.DefaultHTTPRetryConfig(), logger)
		if err != nil {
			return nil, err
		}
		c.httpClient = httpClient
	}

	return c, nil
}

func (c *client) Verify(ctx context.Context, cid string) error {
	if !env.IsValidContentAddress(cid) {
		return fmt.Errorf("malformed content address: %q", cid)
	}

	if c.sh != nil {
		if _, err := c.sh.ObjectStat(cid); err != nil {
			return fmt.Errorf("content address %s did not resolve: %w", cid, err)
		}
		return nil
	}

	url := fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(c.config.GatewayURL, "/"), cid)
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("content address %s did not resolve: %w", cid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return fmt.Errorf("content address %s did not resolve: gateway status %d", cid, resp.StatusCode)
	}
	return nil
}

// NopResolver accepts every content address. Used when no IPFS endpoint is
// configured; the platform still rejects unknown code at execution time.
type NopResolver struct{}

var _ Resolver = NopResolver{}

func (NopResolver) Verify(ctx context.Context, cid string) error { return nil }
