package quality

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Checker probes URL reachability, but only for hosts on the configured
// allow-list. Everything else is answered without network I/O; the allow-list
// is a safety boundary, not an optimization.
type Checker struct {
	allowedDomains []string
	client         *http.Client
	userAgent      string
}

func NewChecker(allowedDomains []string, client *http.Client, userAgent string) *Checker {
	return &Checker{
		allowedDomains: allowedDomains,
		client:         client,
		userAgent:      userAgent,
	}
}

// IsAllowed reports whether the URL's hostname is on the allow-list.
// A host matches either exactly or as a subdomain of an allowed domain.
func (c *Checker) IsAllowed(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range c.allowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}

	return false
}

// CheckURL probes the URL with HEAD, falling back to GET on method errors.
// URLs outside the allow-list return false without any network call.
func (c *Checker) CheckURL(ctx context.Context, rawURL string) bool {
	if !c.IsAllowed(rawURL) {
		slog.Debug("URL not on allow-list, skipping reachability check", "url", rawURL)
		return false
	}

	if ok := c.probe(ctx, http.MethodHead, rawURL); ok {
		return true
	}

	return c.probe(ctx, http.MethodGet, rawURL)
}

func (c *Checker) probe(ctx context.Context, method, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// TrustScore combines allow-listing with observed reachability: 0.9 base for
// allow-listed hosts, 0.5 otherwise, plus 0.1 when the reachability probe
// succeeded. Clamped to [0,1].
func (c *Checker) TrustScore(rawURL string, httpOK *bool) float64 {
	score := 0.5
	if c.IsAllowed(rawURL) {
		score = 0.9
	}

	if httpOK != nil && *httpOK {
		score += 0.1
	}

	return clamp01(score)
}
