// Command api is the Pitchside API server.
//
// Usage:
//
//	pitchside-api
//	PORT=8080 LOG_LEVEL=debug pitchside-api

// @title Pitchside API
// @version 1.0.0
// @description Fantasy football card platform: FPL fixtures, players and live games, Sorare lookups, and owned player cards.
// @host localhost:5000
// @BasePath /
// @schemes http https
// @contact.name Pitchside
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/pitchside/internal/api"
	"github.com/albapepper/pitchside/internal/api/handler"
	"github.com/albapepper/pitchside/internal/auth"
	"github.com/albapepper/pitchside/internal/cache"
	"github.com/albapepper/pitchside/internal/config"
	"github.com/albapepper/pitchside/internal/db"
	"github.com/albapepper/pitchside/internal/listener"
	"github.com/albapepper/pitchside/internal/live"
	"github.com/albapepper/pitchside/internal/maintenance"
	"github.com/albapepper/pitchside/internal/provider/fpl"
	"github.com/albapepper/pitchside/internal/provider/sorare"
	"github.com/albapepper/pitchside/internal/store"

	_ "github.com/albapepper/pitchside/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database (optional)
	var (
		repo     store.Repository
		sessions store.SessionStore
		users    auth.UserStore
	)
	if cfg.HasDatabase() {
		logger.Info("Connecting to database...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)

		pg := store.NewPostgres(pool.Pool)
		repo, sessions, users = pg, pg, pg
	} else {
		logger.Warn("DATABASE_URL not set; card and player routes will answer 503")
	}

	// Initialize cache
	appCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer appCache.Close()
	logger.Info("Cache initialized", "backend", cfg.CacheBackend, "enabled", cfg.CacheEnabled)

	// Upstream clients
	fplClient := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerMinute, appCache, logger)
	sorareClient := sorare.NewClient(cfg.SorareURL, cfg.SorareAPIKey, cfg.SorareRequestsPerMinute, appCache, logger)
	liveService := live.NewService(fplClient)

	// Authentication
	authn, err := auth.New(auth.OptionsFromConfig(cfg), sessions, users, logger)
	if err != nil {
		logger.Error("Failed to configure auth", "error", err)
		os.Exit(1)
	}
	logger.Info("Auth configured", "mode", authn.Mode().String())

	// Live push feed
	var feed *live.Feed
	if cfg.LiveFeedEnabled {
		feed = live.NewFeed(liveService, cfg.LivePollInterval, logger)
		go feed.Run(ctx)
	}

	// Maintenance tickers (session purge, cache warm-up)
	tasks := maintenance.Tasks{Sessions: sessions, Cache: fplClient}
	go maintenance.Start(ctx, tasks, maintenance.DefaultConfig(), logger)

	// Catalogue events from the ingest tool
	if cfg.HasDatabase() {
		go listener.Start(ctx, cfg.DatabaseURL, onCatalogueChanged(fplClient, feed, logger), logger)
	}

	// Create router
	h := handler.New(handler.Deps{
		FPL:            fplClient,
		Sorare:         sorareClient,
		Live:           liveService,
		Repo:           repo,
		Cache:          appCache,
		Feed:           feed,
		AllowedOrigins: cfg.CORSAllowOrigins,
		BaseContext:    ctx,
		Logger:         logger,
	})
	router := api.NewRouter(h, authn, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Pitchside API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// onCatalogueChanged refreshes the FPL cache and the live snapshot after
// the ingest tool reseeds the catalogue.
func onCatalogueChanged(fplClient *fpl.Client, feed *live.Feed, logger *slog.Logger) listener.Handler {
	return func(ctx context.Context, event listener.Event) {
		if event.Source != listener.SourceSeedPlayers && event.Source != listener.SourceSync {
			return
		}
		if err := fplClient.Warm(ctx); err != nil {
			logger.Warn("Cache refresh after catalogue change failed", "source", event.Source, "error", err)
			return
		}
		if feed != nil {
			if err := feed.Refresh(ctx); err != nil {
				logger.Warn("Live refresh after catalogue change failed", "error", err)
			}
		}
	}
}

// newCache picks the cache backend. Redis is only dialled when selected.
func newCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	if cfg.CacheBackend == "redis" && cfg.CacheEnabled {
		r, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return cache.NewMemory(cfg.CacheEnabled), nil
}
