package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, &Config{RequestsPerWindow: limit, Window: time.Minute}), mr
}

func TestRedisLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newRedisLimiter(t, 2)

	first, err := limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.Equal(t, time.Minute, mr.TTL(KeyPrefix+"ip:10.0.0.1"))

	second, err := limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, 2, third.Limit)
}

func TestRedisLimiter_WindowDoesNotSlide(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newRedisLimiter(t, 1)

	_, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	decision, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 20*time.Second, mr.TTL(KeyPrefix+"k"))

	mr.FastForward(20 * time.Second)
	decision, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRedisLimiter_RepairsCounterWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newRedisLimiter(t, 2)
	require.NoError(t, mr.Set(KeyPrefix+"k", "5"))

	decision, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, time.Minute, mr.TTL(KeyPrefix+"k"))

	mr.FastForward(time.Minute)
	decision, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 1)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
}
