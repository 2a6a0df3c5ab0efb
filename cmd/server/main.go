package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thescaler/shortener/internal/analytics"
	"github.com/thescaler/shortener/internal/config"
	"github.com/thescaler/shortener/internal/infra"
	"github.com/thescaler/shortener/internal/observability"
	"github.com/thescaler/shortener/internal/repository"
	"github.com/thescaler/shortener/internal/server"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.Setup(ctx, observability.Config{
		ServiceName:  "shortener-gateway",
		Environment:  cfg.App.Environment,
		OTLPEndpoint: cfg.App.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to setup observability: %v", err)
	}
	logger := obs.Logger

	// Connect to the durable store. A dead database is fatal: the main
	// shorten/resolve path cannot run without it.
	db, err := infra.NewPostgresPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("database connected")

	// Connect to the cache. Unlike the store, a dead cache only costs
	// performance: the service starts without it and every lookup falls
	// through to the database.
	cache, err := infra.NewCacheClient(ctx, cfg.Cache.URL)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it",
			slog.String("error", err.Error()))
		cache = nil
	} else {
		defer cache.Close()
		logger.Info("cache connected")
	}

	// Optional click-event publisher; disabled when no broker is
	// configured or the broker cannot be reached.
	var publisher analytics.EventPublisher
	if cfg.Broker.URL != "" {
		p, err := analytics.NewPublisher(cfg.Broker.URL, cfg.Broker.Queue, logger)
		if err != nil {
			logger.Warn("click-event broker unavailable, continuing without it",
				slog.String("error", err.Error()))
		} else {
			defer p.Close()
			publisher = p
			logger.Info("click-event publisher connected",
				slog.String("queue", cfg.Broker.Queue))
		}
	}

	recorder := analytics.NewRecorder(
		repository.NewURLRepository(db),
		publisher,
		logger,
		cfg.App.AnalyticsQueueSize,
	)

	srv := server.NewServer(cfg, db, cache, obs, recorder)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
	}

	// Drain clicks that were already scheduled before tearing down
	// telemetry and connections.
	recorder.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	obs.Shutdown(shutdownCtx)

	logger.Info("server exited gracefully")
}
