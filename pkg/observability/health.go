package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthChecker reports on the data directory and the optional backing services
type HealthChecker struct {
	dataDir string
	db      *sql.DB
	redis   *redis.Client
	version string
}

// NewHealthChecker creates a new health checker. db and redis may be nil when
// search history or the shared cache are not configured.
func NewHealthChecker(dataDir string, db *sql.DB, redis *redis.Client) *HealthChecker {
	return &HealthChecker{
		dataDir: dataDir,
		db:      db,
		redis:   redis,
		version: "dev",
	}
}

// WithVersion sets the version reported by Check
func (h *HealthChecker) WithVersion(version string) *HealthChecker {
	h.version = version
	return h
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns 200 as long as the process is serving
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness returns 503 when the data directory cannot be searched
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")

	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(status)
}

// Check performs a comprehensive health check. The data directory is the
// only hard dependency; history and cache outages degrade the service.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	dirStatus := h.checkDataDir()
	status.Dependencies["data_dir"] = dirStatus
	if dirStatus.Status == StatusUnhealthy {
		status.Status = StatusUnhealthy
	}

	if h.db != nil {
		dbStatus := h.checkDatabase(ctx)
		status.Dependencies["history"] = dbStatus
		degrade(&status, dbStatus)
	}

	if h.redis != nil {
		redisStatus := h.checkRedis(ctx)
		status.Dependencies["redis"] = redisStatus
		degrade(&status, redisStatus)
	}

	return status
}

func degrade(status *HealthStatus, dep DependencyStatus) {
	if dep.Status != StatusHealthy && status.Status == StatusHealthy {
		status.Status = StatusDegraded
	}
}

// checkDataDir verifies the document directory exists and can be listed
func (h *HealthChecker) checkDataDir() DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	info, err := os.Stat(h.dataDir)
	switch {
	case err != nil:
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	case !info.IsDir():
		status.Status = StatusUnhealthy
		status.Message = fmt.Sprintf("%s is not a directory", h.dataDir)
	default:
		f, err := os.Open(h.dataDir)
		if err != nil {
			status.Status = StatusUnhealthy
			status.Message = err.Error()
			break
		}
		f.Close()
	}

	status.LatencyMS = time.Since(start).Milliseconds()
	return status
}

// checkDatabase checks the search history database
func (h *HealthChecker) checkDatabase(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	err := h.db.PingContext(ctx)
	status.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
		return status
	}

	stats := h.db.Stats()
	if stats.MaxOpenConnections > 0 && stats.OpenConnections >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Message = "connection pool exhausted"
	}

	return status
}

// checkRedis checks the shared result cache
func (h *HealthChecker) checkRedis(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	err := h.redis.Ping(ctx).Err()
	status.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}

	return status
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/health", checker.Readiness)
	mux.HandleFunc("/health/live", checker.Liveness)
	mux.HandleFunc("/health/ready", checker.Readiness)
}
