package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces limiter counters in a Redis shared with the result cache
const KeyPrefix = "ratelimit:v1:"

// RedisLimiter counts requests per key in fixed windows stored in Redis, so
// the limit holds across every instance behind a load balancer
type RedisLimiter struct {
	client *redis.Client
	config *Config
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(client *redis.Client, config *Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		config: config.withDefaults(),
	}
}

// Allow increments key's counter and reads its expiry in one round trip.
// The window starts with the first request. A counter found without an
// expiry, whatever the count, gets a fresh window so it cannot block the
// client forever.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := KeyPrefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	}); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := incr.Val()
	remaining := ttl.Val()
	if remaining <= 0 {
		if err := l.client.Expire(ctx, redisKey, l.config.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit window: %w", err)
		}
		remaining = l.config.Window
	}

	limit := l.config.RequestsPerWindow
	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		Reset:     time.Now().Add(remaining),
	}, nil
}
