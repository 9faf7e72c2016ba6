package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/workforcedata/occsearch/pkg/api"
	"github.com/workforcedata/occsearch/pkg/async"
	"github.com/workforcedata/occsearch/pkg/cache"
	"github.com/workforcedata/occsearch/pkg/config"
	"github.com/workforcedata/occsearch/pkg/history"
	"github.com/workforcedata/occsearch/pkg/inventory"
	"github.com/workforcedata/occsearch/pkg/observability"
	"github.com/workforcedata/occsearch/pkg/ratelimit"
	"github.com/workforcedata/occsearch/pkg/search"
	"github.com/workforcedata/occsearch/pkg/watch"
)

var version = "dev"

func main() {
	dataDir := flag.String("data-dir", "", "Directory of JSON documents to search (overrides OCCSEARCH_DATA_DIR)")
	port := flag.String("port", "", "Port to listen on (overrides OCCSEARCH_PORT)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, *dataDir, *port); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", cfg.Observability.OTelServiceName)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Error("occsearch exited with error")
		os.Exit(1)
	}
}

// applyFlags lets command-line flags override the environment
func applyFlags(cfg *config.Config, dataDir, port string) error {
	if dataDir != "" {
		cfg.Search.DataDir = dataDir
	}
	if port != "" {
		cfg.Server.Port = port
	}
	return cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, logger *observability.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	shutdown.RegisterShutdownFunc("telemetry", providers.Shutdown)

	// abort releases whatever was opened so far when startup fails
	abort := func(err error) error {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancelShutdown()
		return errors.Join(err, shutdown.Shutdown(shutdownCtx))
	}

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(registry)
	}

	recorder, db, err := openHistory(ctx, cfg.History, logger)
	if err != nil {
		return abort(err)
	}
	if db != nil {
		shutdown.RegisterShutdownFunc("history", func(context.Context) error { return db.Close() })
	}

	resultCache, redisClient, err := openCache(ctx, cfg.Cache, metrics, logger)
	if err != nil {
		return abort(err)
	}
	shutdown.RegisterShutdownFunc("result cache", func(context.Context) error { return resultCache.Close() })

	engine := search.NewEngine(search.Config{
		DataDir:  cfg.Search.DataDir,
		Rules:    cfg.Search.Rules,
		Schemas:  cfg.Search.Schemas,
		MinScore: cfg.Search.MinScore,
		Workers:  cfg.Search.Workers,
	}, logger, metrics)

	tasks := async.NewTasks(logger, 0)

	handlers := search.NewHandlers(engine, search.HandlerOptions{
		Cache:      resultCache,
		History:    recorder,
		Tasks:      tasks,
		Logger:     logger,
		Metrics:    metrics,
		Production: cfg.IsProduction(),
	})

	checker := observability.NewHealthChecker(cfg.Search.DataDir, db, redisClient).WithVersion(version)

	if schedule := cfg.Maintenance.InventorySchedule; schedule != "" {
		scheduler, err := inventory.Start(schedule, inventory.NewJob(cfg.Search.DataDir, metrics, logger))
		if err != nil {
			return abort(err)
		}
		shutdown.RegisterShutdownFunc("inventory", scheduler.Stop)
	}

	if cfg.Maintenance.WatchEnabled && cfg.Cache.Enabled {
		watcher, err := watch.New(cfg.Search.DataDir, resultCache, logger, watch.WithMetrics(metrics))
		if err != nil {
			logger.WithError(err).Warn("Data directory watcher disabled")
		} else {
			watchCtx, stopWatch := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				defer close(done)
				watcher.Run(watchCtx)
			}()
			shutdown.RegisterShutdownFunc("watcher", func(context.Context) error {
				stopWatch()
				<-done
				return nil
			})
		}
	}

	shutdown.RegisterShutdownFunc("background tasks", tasks.Wait)

	server := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewServer(api.Options{
			Logger:      logger,
			Metrics:     metrics,
			Health:      checker,
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimiter: newRateLimiter(ctx, cfg.Server, redisClient, logger),
		}, handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:      api.NewHealthMux(checker, registry),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	shutdown.AddServer(server)
	shutdown.AddServer(healthServer)

	serverErr := make(chan error, 2)
	for _, srv := range []*http.Server{server, healthServer} {
		go func(srv *http.Server) {
			logger.WithField("addr", srv.Addr).Info("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("server %s: %w", srv.Addr, err)
				cancel()
			}
		}(srv)
	}

	logger.WithFields(map[string]interface{}{
		"data_dir":    cfg.Search.DataDir,
		"version":     version,
		"environment": cfg.Environment,
	}).Info("occsearch started")

	shutdownErr := shutdown.WaitForShutdown(ctx)

	select {
	case err := <-serverErr:
		return errors.Join(err, shutdownErr)
	default:
		return shutdownErr
	}
}

// openHistory connects the search history store. Without a URL history is
// disabled; a failed connection is fatal because the operator asked for it.
func openHistory(ctx context.Context, cfg config.HistoryConfig, logger *observability.Logger) (history.Recorder, *sql.DB, error) {
	if cfg.PostgresURL == "" {
		logger.Info("Search history disabled")
		return history.Noop{}, nil, nil
	}

	db, err := history.Open(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}

	recorder := history.NewPostgresRecorder(db)
	if err := recorder.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("Search history enabled")
	return recorder, db, nil
}

// newRateLimiter shares counters through Redis when the result cache uses it
// and keeps them in process otherwise. It returns nil when limiting is off.
func newRateLimiter(ctx context.Context, cfg config.ServerConfig, client *redis.Client, logger *observability.Logger) ratelimit.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}

	limits := &ratelimit.Config{
		RequestsPerWindow: cfg.RateLimit,
		Window:            time.Minute,
		Burst:             cfg.RateLimitBurst,
	}
	log := logger.WithField("requests_per_minute", cfg.RateLimit)

	if client != nil {
		log.Info("Rate limiting backed by Redis")
		return ratelimit.NewRedisLimiter(client, limits)
	}

	limiter := ratelimit.NewMemoryLimiter(limits, nil)
	limiter.StartPruning(ctx)
	log.WithField("burst", cfg.RateLimitBurst).Info("Rate limiting in memory")
	return limiter
}

// openCache builds the result cache: disabled, Redis when a URL is set, in memory otherwise
func openCache(ctx context.Context, cfg config.CacheConfig, metrics *observability.Metrics, logger *observability.Logger) (cache.Cache, *redis.Client, error) {
	if !cfg.Enabled {
		logger.Info("Result cache disabled")
		return cache.Disabled{}, nil, nil
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("ttl", cfg.TTL.String()).Info("Result cache backed by Redis")
		return cache.NewRedisCache(client, cfg.TTL, metrics), client, nil
	}

	memCache, err := cache.NewMemoryCache(&cache.Config{
		MaxEntries: cfg.MaxEntries,
		TTL:        cfg.TTL,
	}, cache.WithMetrics(metrics))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	logger.WithFields(map[string]interface{}{
		"ttl":         cfg.TTL.String(),
		"max_entries": cfg.MaxEntries,
	}).Info("Result cache in memory")
	return memCache, nil, nil
}
