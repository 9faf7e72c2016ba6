package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	limiter := NewMemoryLimiter(&Config{RequestsPerWindow: 3, Window: time.Minute, Burst: 1}, clock)

	for i := 0; i < 4; i++ {
		decision, err := limiter.Allow(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d", i)
		assert.Equal(t, 3-i, decision.Remaining)
		assert.Equal(t, 3, decision.Limit)
	}

	decision, err := limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)

	// other clients have their own bucket
	decision, err = limiter.Allow(ctx, "ip:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// a third of the window refills one token
	clock.Advance(20 * time.Second)
	decision, err = limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestMemoryLimiter_RefillCapped(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	limiter := NewMemoryLimiter(&Config{RequestsPerWindow: 2, Window: time.Minute}, clock)

	_, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	decision, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestMemoryLimiter_RefillKeepsPartialInterval(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	limiter := NewMemoryLimiter(&Config{RequestsPerWindow: 3, Window: time.Minute}, clock)

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	// one token every 20s: 30s yields one token with 10s carried over
	clock.Advance(30 * time.Second)
	decision, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	clock.Advance(10 * time.Second)
	decision, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestMemoryLimiter_SteadyTrafficKeepsRate(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	limiter := NewMemoryLimiter(&Config{RequestsPerWindow: 6, Window: time.Minute}, clock)

	allowed := 0
	// a request every 7s for ten minutes, after the initial bucket is spent
	for i := 0; i < 6; i++ {
		_, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
	}
	for elapsed := time.Duration(0); elapsed < 10*time.Minute; elapsed += 7 * time.Second {
		clock.Advance(7 * time.Second)
		decision, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		if decision.Allowed {
			allowed++
		}
	}
	assert.GreaterOrEqual(t, allowed, 59)
}

func TestMemoryLimiter_Prune(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	limiter := NewMemoryLimiter(&Config{RequestsPerWindow: 5, Window: time.Minute}, clock)

	_, err := limiter.Allow(ctx, "old")
	require.NoError(t, err)
	clock.Advance(90 * time.Second)
	_, err = limiter.Allow(ctx, "recent")
	require.NoError(t, err)

	assert.Equal(t, 0, limiter.Prune())

	clock.Advance(time.Minute)
	assert.Equal(t, 1, limiter.Prune())

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Contains(t, limiter.buckets, "recent")
	assert.NotContains(t, limiter.buckets, "old")
}

func TestConfig_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), (*Config)(nil).withDefaults())

	cfg := (&Config{RequestsPerWindow: 100}).withDefaults()
	assert.Equal(t, 100, cfg.RequestsPerWindow)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, 0, cfg.Burst)
}
