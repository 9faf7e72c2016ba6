// Package async runs background work that must not crash the process or
// outlive shutdown.
//
// # Overview
//
// Tasks wraps each goroutine with panic recovery, a timeout and structured
// logging of failures:
//
//	tasks := async.NewTasks(logger, 5*time.Second)
//	tasks.Go(r.Context(), "record search", func(ctx context.Context) error {
//		return recorder.Record(ctx, entry)
//	})
//
// On shutdown, drain what is still running:
//
//	err := tasks.Wait(shutdownCtx)
package async
