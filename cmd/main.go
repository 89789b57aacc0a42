package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/growthboard/internal/adapters/cache"
	"github.com/okian/growthboard/internal/adapters/http/api"
	"github.com/okian/growthboard/internal/adapters/upstream"
	app "github.com/okian/growthboard/internal/app"
	"github.com/okian/growthboard/internal/config"
	"github.com/okian/growthboard/pkg/logger"
	"github.com/okian/growthboard/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	cachePingTimeout          = 2 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := configureMetrics(cfg); err != nil {
		loggerInstance.Error(ctx, "failed to configure metrics", logger.Error(err))
		return
	}

	handler, cleanup, err := buildHandler(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer cleanup()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("upstream", cfg.UpstreamBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// configureMetrics rebuilds the metrics registry from cfg. It must run before
// the router is built, since /metrics serves the registry current at that time.
func configureMetrics(cfg *config.Config) error {
	labels, err := cfg.MetricsConstLabels()
	if err != nil {
		return err
	}
	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithCustomLabels(labels),
	)
	return nil
}

// buildHandler wires the upstream client, optional cache, service and router.
// The returned cleanup stops the service and closes the cache.
func buildHandler(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	log := logger.Get()

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	client := upstream.NewClient(cfg.UpstreamBaseURL,
		upstream.WithTimeout(cfg.UpstreamTimeout()),
		upstream.WithLocation(loc),
		upstream.WithPaths(upstream.Paths{
			Revenue:     cfg.RevenuePath,
			Legacy:      cfg.LegacyPath,
			Sessions:    cfg.SessionsPath,
			Professions: cfg.ProfessionsPath,
		}),
	)

	svc := app.New(client,
		app.WithLogger(log.Named("service")),
		app.WithDayLabel(cfg.DayLabelFormat),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, err
	}

	apiOpts := []api.Option{api.WithCORSOrigins(cfg.CORSOrigins())}
	var store *cache.RedisCache
	if cfg.CacheEnabled() {
		store = cache.NewRedisCache(cfg.CacheRedisAddr,
			cache.WithDB(cfg.CacheRedisDB),
			cache.WithTTL(cfg.CacheTTL()),
		)
		pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
		if err := store.Ping(pingCtx); err != nil {
			// The cache is optional; requests fall through to the feeds.
			log.Warn(ctx, "response cache unreachable", logger.String("addr", cfg.CacheRedisAddr), logger.Error(err))
		}
		cancel()
		apiOpts = append(apiOpts, api.WithCache(store))
		log.Info(ctx, "response cache enabled", logger.String("ttl", cfg.CacheTTL().String()))
	}

	router := api.NewServer(svc, apiOpts...).Router(ctx)

	cleanup := func() {
		svc.Stop()
		if store != nil {
			_ = store.Close()
		}
	}
	return router, cleanup, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
