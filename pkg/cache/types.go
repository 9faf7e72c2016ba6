package cache

import (
	"context"
	"time"
)

const (
	// DefaultTTL is how long a response stays servable
	DefaultTTL = 5 * time.Minute

	// DefaultMaxEntries bounds the in-memory cache
	DefaultMaxEntries = 1000
)

// Cache stores encoded responses by key
type Cache interface {
	// Get returns the payload stored under key, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores payload under key, replacing any previous entry
	Set(ctx context.Context, key string, payload []byte) error
	// Purge drops every entry
	Purge(ctx context.Context) error
	// Stats reports hit and miss counts since creation
	Stats(ctx context.Context) (*Stats, error)
	// Close releases resources
	Close() error
}

// Stats represents cache statistics
type Stats struct {
	Type      string  `json:"type"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	ItemCount int64   `json:"item_count"`
}

// Config holds cache configuration
type Config struct {
	MaxEntries int           // Max in-memory entries (default: 1000)
	TTL        time.Duration // Entry lifetime (default: 5 minutes)
}

// DefaultConfig returns default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: DefaultMaxEntries,
		TTL:        DefaultTTL,
	}
}

func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}
	if c.MaxEntries > 0 {
		out.MaxEntries = c.MaxEntries
	}
	if c.TTL > 0 {
		out.TTL = c.TTL
	}
	return out
}
