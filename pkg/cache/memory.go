package cache

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/workforcedata/occsearch/pkg/observability"
)

type entry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryCache is a bounded in-process LRU whose entries expire after the TTL.
// Expiry is checked against the injected clock on read; an expired entry is
// left in place until the next Set for its key or until LRU eviction.
type MemoryCache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	cache   *lru.Cache[string, entry]
	metrics *observability.Metrics

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a MemoryCache
type Option func(*MemoryCache)

// WithClock replaces the wall clock, typically with clockwork.NewFakeClock in tests
func WithClock(clock clockwork.Clock) Option {
	return func(c *MemoryCache) {
		c.clock = clock
	}
}

// WithMetrics records hits and misses on the Prometheus counters
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *MemoryCache) {
		c.metrics = metrics
	}
}

// NewMemoryCache creates an in-memory cache
func NewMemoryCache(config *Config, opts ...Option) (*MemoryCache, error) {
	config = config.withDefaults()

	store, err := lru.New[string, entry](config.MaxEntries)
	if err != nil {
		return nil, err
	}

	c := &MemoryCache{
		ttl:   config.TTL,
		clock: clockwork.NewRealClock(),
		cache: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the payload for key if it was stored less than one TTL ago
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	e, ok := c.cache.Get(key)
	if !ok || c.clock.Since(e.storedAt) >= c.ttl {
		c.recordMiss()
		return nil, ErrCacheMiss
	}

	c.recordHit()
	return e.payload, nil
}

// Set stores payload under key, stamped with the current clock time
func (c *MemoryCache) Set(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	c.cache.Add(key, entry{payload: payload, storedAt: c.clock.Now()})
	return nil
}

// Purge drops every entry
func (c *MemoryCache) Purge(ctx context.Context) error {
	c.cache.Purge()
	return nil
}

// Stats returns cache statistics. ItemCount includes expired entries not yet overwritten.
func (c *MemoryCache) Stats(ctx context.Context) (*Stats, error) {
	return newStats("memory", c.hits.Load(), c.misses.Load(), int64(c.cache.Len())), nil
}

// Close releases resources
func (c *MemoryCache) Close() error {
	c.cache.Purge()
	return nil
}

func (c *MemoryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
	}
}

func (c *MemoryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues("memory").Inc()
	}
}

func newStats(kind string, hits, misses, items int64) *Stats {
	stats := &Stats{
		Type:      kind,
		Hits:      hits,
		Misses:    misses,
		ItemCount: items,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}
