package async

import (
	"context"
	"sync"
	"time"

	"github.com/workforcedata/occsearch/pkg/observability"
)

// Tasks runs fire-and-forget background work (search history writes) with
// panic recovery and a per-task timeout, and lets shutdown wait for the
// tasks still in flight.
type Tasks struct {
	logger  *observability.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewTasks creates a task runner. A non-positive timeout defaults to 5 seconds.
func NewTasks(logger *observability.Logger, timeout time.Duration) *Tasks {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Tasks{
		logger:  logger,
		timeout: timeout,
	}
}

// Go executes fn in a goroutine. The task context keeps parentCtx's values
// but not its cancellation, so work started from a request handler survives
// the handler returning.
//
// Example:
//
//	tasks.Go(r.Context(), "record search", func(ctx context.Context) error {
//	    return recorder.Record(ctx, entry)
//	})
func (t *Tasks) Go(parentCtx context.Context, taskName string, fn func(context.Context) error) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), t.timeout)
		defer cancel()

		log := observability.FromContextOr(parentCtx, t.logger).WithField("task", taskName)

		defer observability.RecoverPanic(log, taskName)

		if err := fn(ctx); err != nil {
			log.WithError(err).Warn("background task failed")
		}
	}()
}

// Wait blocks until every started task has returned or ctx is done
func (t *Tasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
