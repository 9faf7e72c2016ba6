// Package inventory periodically counts the documents in the data directory
// and publishes the totals as gauges.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/workforcedata/occsearch/pkg/document"
	"github.com/workforcedata/occsearch/pkg/observability"
)

// Job is a cron.Job that takes one inventory of dir
type Job struct {
	dir     string
	metrics *observability.Metrics
	logger  *observability.Logger

	mu   sync.Mutex
	last document.Stats
}

// NewJob creates an inventory job. metrics may be nil.
func NewJob(dir string, metrics *observability.Metrics, logger *observability.Logger) *Job {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Job{
		dir:     dir,
		metrics: metrics,
		logger:  logger.WithField("component", "inventory"),
	}
}

// Run implements cron.Job
func (j *Job) Run() {
	stats, err := document.Inventory(j.dir)
	if err != nil {
		j.logger.WithError(err).Warn("Document inventory failed")
		return
	}

	j.mu.Lock()
	changed := stats != j.last
	j.last = stats
	j.mu.Unlock()

	if j.metrics != nil {
		j.metrics.DocumentsTotal.Set(float64(stats.Count))
		j.metrics.DocumentsBytes.Set(float64(stats.Bytes))
	}

	log := j.logger.WithFields(map[string]interface{}{
		"documents": stats.Count,
		"bytes":     stats.Bytes,
	})
	if changed {
		log.Info("Document inventory updated")
	} else {
		log.Debug("Document inventory unchanged")
	}
}

// Last returns the most recent successful inventory
func (j *Job) Last() document.Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// Scheduler runs a Job on a cron schedule
type Scheduler struct {
	cron *cron.Cron
	job  *Job
}

// Start takes an inventory immediately and then on every tick of schedule,
// which accepts standard cron expressions and descriptors such as "@every 1m"
func Start(schedule string, job *Job) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddJob(schedule, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(job)); err != nil {
		return nil, fmt.Errorf("failed to schedule inventory: %w", err)
	}

	job.Run()
	c.Start()

	job.logger.WithField("schedule", schedule).Info("Document inventory scheduled")
	return &Scheduler{cron: c, job: job}, nil
}

// Stop halts the schedule and waits for a running inventory to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
