package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter is a per-key token bucket used for admission control across all
// adapters and sources. TryAcquire never blocks: a denied call simply means
// the work is skipped this round.
type Limiter struct {
	capacity   float64
	refillRate float64 // tokens per second
	buckets    map[string]*bucket
	mu         sync.Mutex
	now        func() time.Time
}

func NewLimiter(capacity, refillRatePerSecond float64) *Limiter {
	return &Limiter{
		capacity:   capacity,
		refillRate: refillRatePerSecond,
		buckets:    make(map[string]*bucket),
		now:        time.Now,
	}
}

// TryAcquire refills the bucket for key based on elapsed wall-clock time,
// then takes n tokens if available. Buckets are created full on first use.
func (l *Limiter) TryAcquire(key string, n float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.lastRefill = now
	}

	if b.tokens < n {
		return false
	}

	b.tokens -= n
	return true
}

// Tokens reports the current token count for key without refilling.
// Unknown keys report full capacity.
func (l *Limiter) Tokens(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b.tokens
	}
	return l.capacity
}
