package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Search metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchDuration        prometheus.Histogram
	SearchResultsTotal    prometheus.Histogram
	DocumentsScannedTotal prometheus.Counter
	DocumentErrorsTotal   *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CachePurgesTotal *prometheus.CounterVec

	// RateLimitedTotal counts requests rejected with 429
	RateLimitedTotal prometheus.Counter

	// Inventory metrics
	DocumentsTotal prometheus.Gauge
	DocumentsBytes prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occsearch_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "occsearch_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "occsearch_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		// Search metrics
		SearchRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occsearch_search_requests_total",
				Help: "Total number of search requests by outcome",
			},
			[]string{"outcome"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "occsearch_search_duration_seconds",
				Help:    "Time spent scanning the document directory for one query",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		SearchResultsTotal: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "occsearch_search_results",
				Help:    "Number of documents surviving scoring per query",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		DocumentsScannedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "occsearch_documents_scanned_total",
				Help: "Total number of documents loaded and matched",
			},
		),
		DocumentErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occsearch_document_errors_total",
				Help: "Total number of documents skipped because they could not be read or parsed",
			},
			[]string{"file"},
		),

		// Cache metrics
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occsearch_cache_hits_total",
				Help: "Total number of result cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occsearch_cache_misses_total",
				Help: "Total number of result cache misses",
			},
			[]string{"cache_type"},
		),
		CachePurgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "occsearch_cache_purges_total",
				Help: "Total number of result cache purges",
			},
			[]string{"reason"},
		),

		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "occsearch_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		// Inventory metrics
		DocumentsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "occsearch_documents",
				Help: "Number of JSON documents in the data directory",
			},
		),
		DocumentsBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "occsearch_documents_bytes",
				Help: "Total size of the JSON documents in the data directory",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.SearchRequestsTotal,
		m.SearchDuration,
		m.SearchResultsTotal,
		m.DocumentsScannedTotal,
		m.DocumentErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CachePurgesTotal,
		m.RateLimitedTotal,
		m.DocumentsTotal,
		m.DocumentsBytes,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
