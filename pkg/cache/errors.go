package cache

import "errors"

var (
	// ErrCacheMiss is returned when a key is absent or its entry has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the backing store cannot be reached
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrInvalidCacheKey is returned for an empty key
	ErrInvalidCacheKey = errors.New("invalid cache key")
)
