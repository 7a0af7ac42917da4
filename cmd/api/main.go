package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/pointsdash/api/middleware"
	"github.com/angelmondragon/pointsdash/api/routes"
	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/internal/upstream"
	"github.com/angelmondragon/pointsdash/pkg/config"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/metrics"
	"github.com/angelmondragon/pointsdash/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "pointsdash-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pointsdash-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		cache   redis.Pinger
		limiter middleware.RateLimiterStore
	)
	upstreamOpts := []upstream.Option{
		upstream.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		upstream.WithRetry(cfg.Upstream.RetryAttempts, cfg.Upstream.RetryBaseDelay),
		upstream.WithLogger(logg),
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		cache = redisClient
		limiter = redisClient
		upstreamOpts = append(upstreamOpts, upstream.WithCache(redisClient, cfg.Upstream.CacheTTL))
	} else {
		logg.Info(ctx, "redis not configured, fetch cache and rate limiting disabled")
	}

	fetcher, err := upstream.NewClient(cfg.Upstream.BaseURL, upstreamOpts...)
	if err != nil {
		logg.Error(ctx, "failed to create upstream client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	aggregationMetrics := metrics.NewAggregationMetrics(registry)

	engine, err := analytics.NewEngine(fetcher, analytics.Options{
		MostCommonFallback: cfg.Analytics.Fallback(),
		TopK:               cfg.Analytics.TopK,
		RecentLimit:        cfg.Analytics.RecentLimit,
		Location:           cfg.Analytics.Location(),
		JoinPolicy:         cfg.Analytics.Policy(),
		PageSize:           cfg.Upstream.PageSize,
		MaxPages:           cfg.Upstream.MaxPages,
	}, aggregationMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create aggregation engine", err)
		os.Exit(1)
	}

	dashboardService, err := analytics.NewService(
		engine,
		analytics.NewTracker(analytics.WithIdleTTL(cfg.Analytics.TrackerIdleTTL)),
		aggregationMetrics,
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"join_policy": cfg.Analytics.Policy(),
		"timezone":    cfg.Analytics.Location().String(),
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, cache, limiter, registry, dashboardService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
	}
}
