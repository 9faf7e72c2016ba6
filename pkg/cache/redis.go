package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/workforcedata/occsearch/pkg/observability"
)

const purgeBatchSize = 500

// RedisOptions configures the connection used by NewRedisClient
type RedisOptions struct {
	URL      string
	Password string
	DB       int
}

// NewRedisClient parses the URL, applies overrides and verifies the server answers PING
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	parsed, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if opts.Password != "" {
		parsed.Password = opts.Password
	}
	if opts.DB > 0 {
		parsed.DB = opts.DB
	}

	parsed.DialTimeout = 5 * time.Second
	parsed.ReadTimeout = 3 * time.Second
	parsed.WriteTimeout = 3 * time.Second

	client := redis.NewClient(parsed)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return client, nil
}

// RedisCache shares cached responses between instances. Expiry is delegated
// to Redis, so an entry past its TTL is gone rather than ignored.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, ttl time.Duration, metrics *observability.Metrics) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client:  client,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Get retrieves a cached payload
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.recordMiss()
		return nil, ErrCacheMiss
	} else if err != nil {
		c.recordMiss()
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c.recordHit()
	return data, nil
}

// Set stores a payload with the cache TTL
func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Purge deletes every key under KeyPrefix, leaving other keys in the database alone
func (c *RedisCache) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", purgeBatchSize).Iterator()

	batch := make([]string, 0, purgeBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}

// Stats returns hit/miss counts for this process and the number of cached responses
func (c *RedisCache) Stats(ctx context.Context) (*Stats, error) {
	var items int64
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", purgeBatchSize).Iterator()
	for iter.Next(ctx) {
		items++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan failed: %w", err)
	}

	return newStats("redis", c.hits.Load(), c.misses.Load(), items), nil
}

// Close closes the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
	}
}

func (c *RedisCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
	}
}
