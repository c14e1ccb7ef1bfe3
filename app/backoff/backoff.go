package backoff

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy wraps fallible operations with bounded exponential retry. It is the
// only retry mechanism in the collection core: adapters route every network
// call through Run, and failures surface only after MaxAttempts exhaust.
type Policy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func NewPolicy(baseDelay, maxDelay time.Duration, maxAttempts int) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Policy{
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		MaxAttempts: maxAttempts,
	}
}

// ComputeDelay returns the sleep before retrying the given attempt (0-based):
// capped exponential growth plus deterministic jitter worth up to half of the
// capped delay.
func (p *Policy) ComputeDelay(attempt int, key string) time.Duration {
	delay := p.BaseDelay << uint(attempt)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}

	jitter := Jitter(key, attempt, delay.Seconds()*0.5)

	return delay + time.Duration(jitter*float64(time.Second))
}

// Run invokes op, retrying on failure up to MaxAttempts total attempts.
// The last error is returned once attempts are exhausted.
func (p *Policy) Run(ctx context.Context, key string, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.ComputeDelay(attempt, key)
		slog.Debug("Operation failed, retrying", "key", key, "attempt", attempt+1, "delay", delay.String(), "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, lastErr)
}
