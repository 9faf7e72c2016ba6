package ratelimit

import (
	"context"
	"time"
)

// Config defines rate limiting configuration
type Config struct {
	// RequestsPerWindow is the max requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows temporary bursts above the rate (MemoryLimiter only)
	Burst int
}

// DefaultConfig returns default rate limit settings
func DefaultConfig() *Config {
	return &Config{
		RequestsPerWindow: 60,
		Window:            time.Minute,
		Burst:             10,
	}
}

func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}
	if c.RequestsPerWindow > 0 {
		out.RequestsPerWindow = c.RequestsPerWindow
	}
	if c.Window > 0 {
		out.Window = c.Window
	}
	if c.Burst >= 0 {
		out.Burst = c.Burst
	}
	return out
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the client identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
