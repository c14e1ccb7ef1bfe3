package adapter

import (
	"net/http"
	"time"

	"github.com/mediawatch-io/collector/app/backoff"
	"github.com/mediawatch-io/collector/app/ratelimit"
	"github.com/mediawatch-io/collector/app/secrets"
)

func newTestContext(client *http.Client) *Context {
	if client == nil {
		client = http.DefaultClient
	}
	return &Context{
		HTTPClient: client,
		Limiter:    ratelimit.NewLimiter(100, 100),
		Backoff:    backoff.NewPolicy(time.Millisecond, 5*time.Millisecond, 2),
		Secrets:    secrets.NewStaticResolver(nil),
		UserAgent:  "collector-test/1.0",
	}
}

func newThrottledContext() *Context {
	actx := newTestContext(nil)
	actx.Limiter = ratelimit.NewLimiter(0, 0)
	return actx
}

func newStaticSecrets(values map[string]string) *secrets.Resolver {
	return secrets.NewStaticResolver(values)
}
