// Package watch purges the result cache when documents in the data
// directory change. Bursts of events (an extract job rewriting several
// files) collapse into one purge after a quiet period.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/workforcedata/occsearch/pkg/document"
	"github.com/workforcedata/occsearch/pkg/observability"
)

// DefaultDebounce is the quiet period between the last change and the purge
const DefaultDebounce = 500 * time.Millisecond

// Purger drops cached results. cache.Cache satisfies it.
type Purger interface {
	Purge(ctx context.Context) error
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithMetrics counts purges on the cache purge counter
func WithMetrics(metrics *observability.Metrics) Option {
	return func(w *Watcher) {
		w.metrics = metrics
	}
}

// Watcher observes one directory
type Watcher struct {
	dir      string
	target   Purger
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// New starts watching dir. The directory itself is watched, not its subdirectories.
func New(dir string, target Purger, logger *observability.Logger, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if logger == nil {
		logger = observability.NopLogger()
	}
	w := &Watcher{
		dir:      dir,
		target:   target,
		fs:       fs,
		debounce: DefaultDebounce,
		logger:   logger.WithField("component", "watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes events until ctx is done, then releases the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	w.logger.WithField("dir", w.dir).Info("Watching data directory for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.WithFields(map[string]interface{}{
				"file": filepath.Base(event.Name),
				"op":   event.Op.String(),
			}).Debug("Document changed")
			pending = time.After(w.debounce)

		case <-pending:
			pending = nil
			w.purge(ctx)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")
		}
	}
}

func (w *Watcher) purge(ctx context.Context) {
	if err := w.target.Purge(ctx); err != nil {
		w.logger.WithError(err).Error("Failed to purge result cache after document change")
		return
	}
	if w.metrics != nil {
		w.metrics.CachePurgesTotal.WithLabelValues("document_change").Inc()
	}
	w.logger.Info("Result cache purged after document change")
}

// relevant reports whether event can change search results
func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != document.Extension {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
