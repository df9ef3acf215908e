// Package handler provides HTTP handlers for all API endpoints.
// FPL and Sorare reads go through the cached provider clients; card and
// player reads go to the Postgres repository.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/pitchside/internal/api/respond"
	"github.com/albapepper/pitchside/internal/cache"
	"github.com/albapepper/pitchside/internal/live"
	"github.com/albapepper/pitchside/internal/provider/fpl"
	"github.com/albapepper/pitchside/internal/provider/sorare"
	"github.com/albapepper/pitchside/internal/store"
)

// FPL is the slice of the FPL client the handlers read.
type FPL interface {
	Fixtures(ctx context.Context) ([]fpl.Fixture, error)
	Players(ctx context.Context) ([]fpl.Player, error)
	Injuries(ctx context.Context) ([]fpl.Player, error)
	PlayerSummary(ctx context.Context, playerID int) (json.RawMessage, error)
	Warm(ctx context.Context) error
}

// Sorare looks up a player's public Sorare profile.
type Sorare interface {
	FindPlayer(ctx context.Context, firstName, lastName string) (*sorare.Player, error)
}

// LiveGames builds the in-play games.
type LiveGames interface {
	LiveGames(ctx context.Context) ([]live.Game, error)
}

// Deps are the handler dependencies. Repo and Feed may be nil: DB-backed
// routes then answer 503 and the WebSocket route is disabled.
type Deps struct {
	FPL            FPL
	Sorare         Sorare
	Live           LiveGames
	Repo           store.Repository
	Cache          cache.Store
	Feed           *live.Feed
	AllowedOrigins []string
	// BaseContext outlives individual requests; WebSocket pumps run on it.
	BaseContext context.Context
	Logger      *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	fpl     FPL
	sorare  Sorare
	live    LiveGames
	repo    store.Repository
	cache   cache.Store
	feed    *live.Feed
	origins map[string]bool
	baseCtx context.Context
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	h := &Handler{
		fpl:     d.FPL,
		sorare:  d.Sorare,
		live:    d.Live,
		repo:    d.Repo,
		cache:   d.Cache,
		feed:    d.Feed,
		origins: make(map[string]bool, len(d.AllowedOrigins)),
		baseCtx: d.BaseContext,
		logger:  d.Logger,
	}
	for _, o := range d.AllowedOrigins {
		h.origins[o] = true
	}
	if h.baseCtx == nil {
		h.baseCtx = context.Background()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.cache == nil {
		h.cache = cache.NewMemory(false)
	}
	return h
}

// upstreamError logs an upstream failure and answers 500.
func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.Error(message, "path", r.URL.Path, "error", err)
	respond.WriteErrorDetail(w, http.StatusInternalServerError, "UPSTREAM_ERROR", message, err.Error())
}

// requireRepo answers 503 and returns false when no database is configured.
func (h *Handler) requireRepo(w http.ResponseWriter) bool {
	if h.repo == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "Database not configured")
		return false
	}
	return true
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and docs location.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":      "Pitchside API",
		"version":   "1.0.0",
		"status":    "running",
		"docs":      "/docs",
		"database":  h.repo != nil,
		"live_feed": h.feed != nil,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "not configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.repo.Ping(r.Context()); err != nil {
		h.logger.Warn("database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns cache backend statistics and live feed counters.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(r.Context()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.feed != nil {
		body["live_feed"] = h.feed.Stats()
	}
	respond.WriteJSONObject(w, http.StatusOK, body)
}
