package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workforcedata/occsearch/pkg/observability"
)

func newTestMemoryCache(t *testing.T, opts ...Option) (*MemoryCache, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c, err := NewMemoryCache(&Config{MaxEntries: 10, TTL: 5 * time.Minute}, append([]Option{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	return c, clock
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(t)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"total":1}`)))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"total":1}`), got)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v1")))

	clock.Advance(5*time.Minute - time.Second)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err, "entry still fresh just before the TTL")

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss, "entry expires exactly at the TTL")

	require.NoError(t, c.Set(ctx, "k", []byte("v2")))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got, "set overwrites the expired entry")
}

func TestMemoryCache_Eviction(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(t)

	for i := 0; i < 11; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v")))
	}

	_, err := c.Get(ctx, "k0")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "k10")
	assert.NoError(t, err)
}

func TestMemoryCache_InvalidKey(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(t)

	_, err := c.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
	assert.ErrorIs(t, c.Set(ctx, "", []byte("v")), ErrInvalidCacheKey)
}

func TestMemoryCache_PurgeAndStats(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	c, _ := newTestMemoryCache(t, WithMetrics(metrics))

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	c.Get(ctx, "a")
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", stats.Type)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.ItemCount)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("memory")))

	require.NoError(t, c.Purge(ctx))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stats, _ = c.Stats(ctx)
	assert.Zero(t, stats.ItemCount)
}

func TestMemoryCache_Defaults(t *testing.T) {
	c, err := NewMemoryCache(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.NoError(t, c.Close())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			c.Set(ctx, key, []byte("v"))
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.Hits+stats.Misses)
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	var c Cache = Disabled{}

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Purge(ctx))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "disabled", stats.Type)
	assert.NoError(t, c.Close())
}
