// Package api assembles the HTTP server for occsearch.
//
// # Overview
//
// Server wraps a gorilla/mux router with the standard middleware stack
// (request IDs, request logging, panic recovery, CORS, Prometheus metrics)
// and an OpenTelemetry handler. Route groups plug in through RouteRegistrar
// and are served both at the root and under /api, so the legacy frontend
// paths keep working:
//
//	GET    /search               GET    /api/search
//	GET    /search/suggestions   GET    /api/search/suggestions
//	GET    /search/cache/stats   GET    /api/search/cache/stats
//	DELETE /search/cache         DELETE /api/search/cache
//
// Health checks are served on the main router when a checker is supplied.
// NewHealthMux builds the separate probe port, which also exposes /metrics.
//
// # Usage
//
//	server := api.NewServer(api.Options{
//		Logger:      logger,
//		Metrics:     metrics,
//		Health:      checker,
//		CORSOrigins: cfg.Server.CORSOrigins,
//	}, searchHandlers)
//	http.ListenAndServe(":8080", server)
package api
