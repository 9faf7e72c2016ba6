package history

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultSuggestionLimit is used when the caller asks for zero or fewer suggestions
	DefaultSuggestionLimit = 5
	// MaxSuggestionLimit caps a single suggestions request
	MaxSuggestionLimit = 20
)

// ErrNotMigrated is returned when the history table does not exist yet
var ErrNotMigrated = errors.New("search history table missing")

// Entry is one executed search
type Entry struct {
	Query       string
	ResultCount int
	Duration    time.Duration
	CacheHit    bool
}

// Recorder stores search history and answers suggestion lookups
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	Suggestions(ctx context.Context, prefix string, limit int) ([]string, error)
}

// Noop discards history
type Noop struct{}

// Record does nothing
func (Noop) Record(context.Context, Entry) error { return nil }

// Suggestions always returns an empty list
func (Noop) Suggestions(context.Context, string, int) ([]string, error) { return []string{}, nil }

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		return MaxSuggestionLimit
	}
	return limit
}
