package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/workforcedata/occsearch/pkg/httputil"
	"github.com/workforcedata/occsearch/pkg/observability"
	"github.com/workforcedata/occsearch/pkg/ratelimit"
)

// APIPrefix is the path prefix under which every route is also served
const APIPrefix = "/api"

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// Options configures the server's middleware and optional endpoints
type Options struct {
	Logger      *observability.Logger
	Metrics     *observability.Metrics
	Health      *observability.HealthChecker
	CORSOrigins []string
	// RateLimiter throttles every route when set
	RateLimiter ratelimit.Limiter
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new API server. Each registrar's routes are mounted at
// the root and again under APIPrefix.
func NewServer(opts Options, registrars ...RouteRegistrar) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}

	s := &Server{router: mux.NewRouter()}
	s.router.NotFoundHandler = http.HandlerFunc(notFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := s.router.PathPrefix(APIPrefix).Subrouter()
	for _, registrar := range registrars {
		registrar.RegisterRoutes(s.router)
		registrar.RegisterRoutes(api)
	}

	if opts.Health != nil {
		s.router.HandleFunc("/health", opts.Health.Readiness).Methods(http.MethodGet)
		s.router.HandleFunc("/health/live", opts.Health.Liveness).Methods(http.MethodGet)
		s.router.HandleFunc("/health/ready", opts.Health.Readiness).Methods(http.MethodGet)
	}

	middleware := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware(opts.Logger),
		httputil.LoggingMiddleware,
		httputil.RecoveryMiddleware,
		httputil.CORSMiddleware(opts.CORSOrigins),
	}
	if opts.Metrics != nil {
		middleware = append(middleware, observability.HTTPMetricsMiddleware(opts.Metrics))
	}
	if opts.RateLimiter != nil {
		middleware = append(middleware, ratelimit.Middleware(opts.RateLimiter, opts.Metrics))
	}

	s.handler = otelhttp.NewHandler(
		httputil.Chain(middleware...)(s.router),
		"occsearch",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the underlying router for additional registrations
func (s *Server) Router() *mux.Router {
	return s.router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFound(w, "route not found: "+r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed: "+r.Method)
}

// NewHealthMux builds the handler for the separate health/metrics port.
// registry may be nil when metrics are disabled.
func NewHealthMux(checker *observability.HealthChecker, registry *prometheus.Registry) *http.ServeMux {
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if registry != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	return healthMux
}
