package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/pitchside/internal/api/handler"
	"github.com/albapepper/pitchside/internal/auth"
	"github.com/albapepper/pitchside/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, a *auth.Auth, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(TimingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5)) // gzip

	// CORS. Credentials are allowed so the SPA can send the session cookie.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// Identity on every request; routes opt in to RequireAuth.
	r.Use(a.Middleware)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// Login, callback, logout and current user for the active auth mode
	a.Routes(r)

	// EPL
	r.Get("/api/epl/standings", h.GetStandings)
	r.Get("/api/epl/fixtures", h.GetFixtures)
	r.Get("/api/epl/players", h.GetPlayers)
	r.Get("/api/epl/players/{id}/summary", h.GetPlayerSummary)
	r.Get("/api/epl/injuries", h.GetInjuries)
	r.Get("/api/epl/live-games", h.GetLiveGames)
	r.Get("/api/epl/live-games/ws", h.LiveGamesWS)
	if cfg.SyncRequiresAdmin {
		r.With(a.RequireAuth, a.RequireAdmin).Post("/api/epl/sync", h.SyncData)
	} else {
		r.Post("/api/epl/sync", h.SyncData)
	}

	// Sorare
	r.Get("/api/sorare/player", h.GetSorarePlayer)

	// Cards
	r.With(a.RequireAuth).Get("/api/user/cards", h.GetUserCards)
	r.Get("/api/players/{id}", h.GetPlayer)

	return r
}
