package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workforcedata/occsearch/pkg/document"
	"github.com/workforcedata/occsearch/pkg/observability"
)

// TestJob_Run verifies the gauges follow the directory contents
func TestJob_Run(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "occ.json"), []byte(`{"a": 1}`), 0644))
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	job := NewJob(dir, metrics, nil)
	job.Run()

	assert.Equal(t, document.Stats{Count: 1, Bytes: 8}, job.Last())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DocumentsTotal))
	assert.Equal(t, float64(8), testutil.ToFloat64(metrics.DocumentsBytes))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cip.json"), []byte(`[]`), 0644))
	job.Run()
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.DocumentsTotal))
	assert.Equal(t, float64(10), testutil.ToFloat64(metrics.DocumentsBytes))
}

// TestJob_RunMissingDirectory verifies a failed inventory keeps the last values
func TestJob_RunMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "occ.json"), []byte(`{}`), 0644))
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	job := NewJob(dir, metrics, nil)
	job.Run()
	require.NoError(t, os.RemoveAll(dir))
	job.Run()

	assert.Equal(t, 1, job.Last().Count)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DocumentsTotal))
}

// TestStart tests scheduling and shutdown
func TestStart(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "occ.json"), []byte(`{}`), 0644))
	job := NewJob(dir, nil, nil)

	scheduler, err := Start("@every 1m", job)
	require.NoError(t, err)
	assert.Equal(t, 1, job.Last().Count)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, scheduler.Stop(ctx))
}

// TestStart_InvalidSchedule verifies a bad expression is rejected
func TestStart_InvalidSchedule(t *testing.T) {
	_, err := Start("every minute", NewJob(t.TempDir(), nil, nil))
	assert.ErrorContains(t, err, "failed to schedule inventory")
}
