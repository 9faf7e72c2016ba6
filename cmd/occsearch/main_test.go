package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workforcedata/occsearch/pkg/cache"
	"github.com/workforcedata/occsearch/pkg/config"
	"github.com/workforcedata/occsearch/pkg/history"
	"github.com/workforcedata/occsearch/pkg/observability"
	"github.com/workforcedata/occsearch/pkg/ratelimit"
)

func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", HealthPort: "9090"},
		Search: config.SearchConfig{DataDir: "./output", MinScore: 0.5, Workers: 2},
		Cache:  config.CacheConfig{Enabled: true, TTL: time.Minute, MaxEntries: 10},
	}
}

// TestApplyFlags verifies flags override the environment and are validated
func TestApplyFlags(t *testing.T) {
	cfg := baseConfig()
	require.NoError(t, applyFlags(cfg, "/srv/extracts", "3000"))
	assert.Equal(t, "/srv/extracts", cfg.Search.DataDir)
	assert.Equal(t, "3000", cfg.Server.Port)

	cfg = baseConfig()
	require.NoError(t, applyFlags(cfg, "", ""))
	assert.Equal(t, "./output", cfg.Search.DataDir)

	cfg = baseConfig()
	assert.Error(t, applyFlags(cfg, "", "9090"))
}

// TestOpenCache tests result cache selection
func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	logger := observability.NopLogger()

	t.Run("disabled", func(t *testing.T) {
		c, client, err := openCache(ctx, config.CacheConfig{}, nil, logger)
		require.NoError(t, err)
		assert.IsType(t, cache.Disabled{}, c)
		assert.Nil(t, client)
	})

	t.Run("memory", func(t *testing.T) {
		c, client, err := openCache(ctx, config.CacheConfig{Enabled: true, TTL: time.Minute, MaxEntries: 5}, nil, logger)
		require.NoError(t, err)
		assert.IsType(t, &cache.MemoryCache{}, c)
		assert.Nil(t, client)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, client, err := openCache(ctx, config.CacheConfig{Enabled: true, TTL: time.Minute, RedisURL: "redis://" + mr.Addr()}, nil, logger)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &cache.RedisCache{}, c)
		assert.NotNil(t, client)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := openCache(ctx, config.CacheConfig{Enabled: true, TTL: time.Minute, RedisURL: "redis://" + addr}, nil, logger)
		assert.ErrorIs(t, err, cache.ErrCacheUnavailable)
	})
}

// TestOpenHistory_Disabled verifies history is a no-op without a URL
func TestOpenHistory_Disabled(t *testing.T) {
	recorder, db, err := openHistory(context.Background(), config.HistoryConfig{}, observability.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, history.Noop{}, recorder)
	assert.Nil(t, db)
}

// TestNewRateLimiter verifies the limiter follows the cache backend
func TestNewRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := observability.NopLogger()

	assert.Nil(t, newRateLimiter(ctx, config.ServerConfig{}, nil, logger))

	limited := config.ServerConfig{RateLimit: 30, RateLimitBurst: 5}
	assert.IsType(t, &ratelimit.MemoryLimiter{}, newRateLimiter(ctx, limited, nil, logger))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	assert.IsType(t, &ratelimit.RedisLimiter{}, newRateLimiter(ctx, limited, client, logger))
}
