// Package maintenance runs periodic background tasks as Go tickers.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SessionPurgeInterval time.Duration // Expired login sessions
	CacheWarmInterval    time.Duration // Refetch FPL bootstrap + fixtures
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		SessionPurgeInterval: 1 * time.Hour,
		CacheWarmInterval:    4 * time.Minute,
	}
}

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Warmer refreshes upstream caches.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Tasks are the task targets. A nil target disables its task.
type Tasks struct {
	Sessions SessionPurger
	Cache    Warmer
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, tasks Tasks, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"session_purge", cfg.SessionPurgeInterval,
		"cache_warm", cfg.CacheWarmInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.SessionPurgeInterval > 0 && tasks.Sessions != nil {
		t := time.NewTicker(cfg.SessionPurgeInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { purgeSessions(ctx, tasks.Sessions, logger) })
	}

	// Refetch bootstrap and fixtures ahead of their TTL.
	if cfg.CacheWarmInterval > 0 && tasks.Cache != nil {
		t := time.NewTicker(cfg.CacheWarmInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { warmCache(ctx, tasks.Cache, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func purgeSessions(ctx context.Context, s SessionPurger, logger *slog.Logger) {
	n, err := s.PurgeExpiredSessions(ctx)
	if err != nil {
		logger.Warn("Session purge failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Purged expired sessions", "count", n)
	}
}

func warmCache(ctx context.Context, w Warmer, logger *slog.Logger) {
	start := time.Now()
	if err := w.Warm(ctx); err != nil {
		logger.Warn("Cache warm failed", "error", err)
		return
	}
	logger.Debug("Cache warmed", "duration", time.Since(start))
}
