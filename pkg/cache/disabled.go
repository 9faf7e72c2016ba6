package cache

import "context"

// Disabled is a Cache that stores nothing
type Disabled struct{}

// Get always misses
func (Disabled) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

// Set discards the payload
func (Disabled) Set(context.Context, string, []byte) error { return nil }

// Purge is a no-op
func (Disabled) Purge(context.Context) error { return nil }

// Stats reports an empty disabled cache
func (Disabled) Stats(context.Context) (*Stats, error) { return &Stats{Type: "disabled"}, nil }

// Close is a no-op
func (Disabled) Close() error { return nil }

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
	_ Cache = Disabled{}
)
