package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mediawatch-io/collector/app/backoff"
	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/ratelimit"
	"github.com/mediawatch-io/collector/app/secrets"
)

// Adapter turns one source protocol into a uniform list of raw events.
//
// Fetch never fails for ordinary "no data" conditions: an empty feed, a
// throttled source, or a batch of malformed items all return an empty slice.
// An error means the fetch itself is unrecoverable after the backoff policy
// exhausted its retries, and fails the surrounding job.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, source *catalog.Source, actx *Context) ([]RawEvent, error)
}

// Context bundles the shared machinery every adapter instance needs. It is
// built once per collection service and injected into each Fetch call.
type Context struct {
	HTTPClient *http.Client
	Limiter    *ratelimit.Limiter
	Backoff    *backoff.Policy
	Secrets    *secrets.Resolver
	UserAgent  string
}

// fetchURL issues a GET through the backoff policy with the user agent and
// any configured secret headers applied. The caller is responsible for rate
// limiter admission before invoking network I/O.
func (c *Context) fetchURL(ctx context.Context, rawURL string, cfg Config, key string) ([]byte, error) {
	var body []byte

	err := c.Backoff.Run(ctx, key, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.UserAgent)
		c.Secrets.InjectHeaders(cfg.HeaderSecrets(), req.Header)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}
