package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type bucket struct {
	tokens     int
	lastUpdate time.Time
}

// MemoryLimiter implements rate limiting using a token bucket per key
type MemoryLimiter struct {
	config *Config
	clock  clockwork.Clock

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewMemoryLimiter creates an in-process limiter. clock may be nil.
func NewMemoryLimiter(config *Config, clock clockwork.Clock) *MemoryLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryLimiter{
		config:  config.withDefaults(),
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) capacity() int {
	return l.config.RequestsPerWindow + l.config.Burst
}

// Allow takes one token from key's bucket, refilling it for the time elapsed
// since the last refill
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity(), lastUpdate: now}
		l.buckets[key] = b
	}

	// lastUpdate advances by whole intervals so partial progress toward the
	// next token carries over; a full bucket restarts from now
	interval := l.config.Window / time.Duration(l.config.RequestsPerWindow)
	if refill := int(now.Sub(b.lastUpdate) / interval); refill > 0 {
		b.tokens += refill
		b.lastUpdate = b.lastUpdate.Add(time.Duration(refill) * interval)
		if b.tokens >= l.capacity() {
			b.tokens = l.capacity()
			b.lastUpdate = now
		}
	}

	decision := Decision{
		Limit: l.config.RequestsPerWindow,
		Reset: b.lastUpdate.Add(l.config.Window),
	}
	if b.tokens > 0 {
		b.tokens--
		decision.Allowed = true
	}
	decision.Remaining = b.tokens
	return decision, nil
}

// Prune drops buckets idle for two windows; they would be full again anyway
func (l *MemoryLimiter) Prune() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastUpdate) > 2*l.config.Window {
			delete(l.buckets, key)
			pruned++
		}
	}
	return pruned
}

// StartPruning calls Prune once per window until ctx is done
func (l *MemoryLimiter) StartPruning(ctx context.Context) {
	ticker := l.clock.NewTicker(l.config.Window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				l.Prune()
			case <-ctx.Done():
				return
			}
		}
	}()
}
