// Package observability provides structured logging, Prometheus metrics,
// health probes, OpenTelemetry tracing and graceful shutdown for occsearch.
//
// # Overview
//
// Every long-lived component receives a *Logger and, where it records
// measurements, the shared *Metrics. Nothing in this package is required for
// a search to succeed; a disabled exporter or missing Redis only degrades
// what is reported.
//
// # Structured Logging
//
// Logging is JSON via logrus:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("file", "occ.json").WithError(err).Warn("Document skipped")
//
// Request-scoped loggers travel in the context:
//
//	ctx = observability.WithLogger(ctx, logger)
//	observability.FromContext(ctx).Info("search complete")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.SearchDuration.Observe(elapsed.Seconds())
//	metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
//
// # Health Checks
//
// Readiness fails only when the data directory is unusable; Redis and the
// history database degrade the status instead:
//
//	checker := observability.NewHealthChecker(cfg.DataDir, db, redisClient)
//	observability.RegisterHealthRoutes(mux, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "occsearch",
//	}, logger)
//	defer providers.Shutdown(ctx)
//
// # Graceful Shutdown
//
//	sm := observability.NewShutdownManager(logger, 30*time.Second)
//	sm.AddServer(apiServer)
//	sm.RegisterShutdownFunc("cache", func(context.Context) error { return c.Close() })
//	err := sm.WaitForShutdown(ctx)
package observability
