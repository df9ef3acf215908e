// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Authentication mode: resolved once per process
// --------------------------------------------------------------------------

// AuthMode selects how requests are authenticated. Exactly one mode is
// active for the lifetime of a process.
type AuthMode int

const (
	// AuthManaged is OAuth on a managed platform (REPL_ID present), served
	// from /api/login and /api/callback.
	AuthManaged AuthMode = iota + 1
	// AuthMock injects a fixed identity into every request.
	AuthMock
	// AuthOAuth is direct Google OAuth from /api/auth/google.
	AuthOAuth
)

func (m AuthMode) String() string {
	switch m {
	case AuthManaged:
		return "managed"
	case AuthMock:
		return "mock"
	case AuthOAuth:
		return "oauth"
	default:
		return "unknown"
	}
}

// ResolveAuthMode applies the startup rules: a managed platform always uses
// managed OAuth; otherwise mock auth is used when requested explicitly or
// when no session secret is configured; otherwise direct OAuth.
func ResolveAuthMode(managedPlatform, useMock bool, sessionSecret string) AuthMode {
	if managedPlatform {
		return AuthManaged
	}
	if useMock || sessionSecret == "" {
		return AuthMock
	}
	return AuthOAuth
}

// --------------------------------------------------------------------------
// Table names: single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	UsersTable    = "users"
	PlayersTable  = "players"
	TeamsTable    = "teams"
	CardsTable    = "player_cards"
	SessionsTable = "sessions"
)

// --------------------------------------------------------------------------
// Config struct: populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (optional for the API; DB-backed routes answer 503 without it)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
	SkipPrepare    bool

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    slog.Level

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstream APIs
	FPLBaseURL              string
	FPLRequestsPerMinute    int
	SorareURL               string
	SorareAPIKey            string
	SorareRequestsPerMinute int

	// Cache
	CacheEnabled bool
	CacheBackend string // memory, redis
	RedisURL     string

	// Live feed
	LivePollInterval time.Duration
	LiveFeedEnabled  bool

	// Auth
	AuthMode           AuthMode
	MockUserID         string
	MockFirstName      string
	MockLastName       string
	SessionSecret      string
	SessionTTL         time.Duration
	PublicURL          string
	GoogleClientID     string
	GoogleClientSecret string
	AdminUserIDs       []string
	SyncRequiresAdmin  bool
}

// Load reads configuration from environment variables with sensible
// defaults and validates it for serving, including the auth mode.
func Load() (*Config, error) {
	cfg, err := LoadForCLI()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAuth(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForCLI is Load without auth validation, for the ingest tool.
func LoadForCLI() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 5000)),
		Environment: envOr("ENVIRONMENT", envOr("NODE_ENV", "development")),
		Debug:       envBool("DEBUG", false),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		FPLBaseURL:              envOr("FPL_BASE_URL", "https://fantasy.premierleague.com/api"),
		FPLRequestsPerMinute:    envInt("FPL_REQUESTS_PER_MINUTE", 60),
		SorareURL:               envOr("SORARE_GRAPHQL_URL", "https://api.sorare.com/graphql"),
		SorareAPIKey:            envOr("SORARE_API_KEY", ""),
		SorareRequestsPerMinute: envInt("SORARE_REQUESTS_PER_MINUTE", 30),

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheBackend: strings.ToLower(envOr("CACHE_BACKEND", "memory")),
		RedisURL:     envOr("REDIS_URL", "redis://localhost:6379/0"),

		LivePollInterval: envDuration("LIVE_POLL_INTERVAL", 30*time.Second),
		LiveFeedEnabled:  envBool("LIVE_FEED_ENABLED", true),

		MockUserID:         envOr("MOCK_USER_ID", ""),
		MockFirstName:      envOr("MOCK_FIRST_NAME", "Mock"),
		MockLastName:       envOr("MOCK_LAST_NAME", "User"),
		SessionSecret:      envOr("SESSION_SECRET", ""),
		SessionTTL:         envDuration("SESSION_TTL", 7*24*time.Hour),
		PublicURL:          strings.TrimRight(envOr("PUBLIC_URL", ""), "/"),
		GoogleClientID:     envOr("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envOr("GOOGLE_CLIENT_SECRET", ""),
		AdminUserIDs:       envList("ADMIN_USER_IDS", nil),
		SyncRequiresAdmin:  envBool("SYNC_REQUIRES_ADMIN", false),
	}

	cfg.AuthMode = ResolveAuthMode(
		os.Getenv("REPL_ID") != "",
		os.Getenv("USE_MOCK_AUTH") == "true",
		cfg.SessionSecret,
	)

	switch cfg.CacheBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", cfg.CacheBackend)
	}
	return cfg, nil
}

func (c *Config) validateAuth() error {
	switch c.AuthMode {
	case AuthMock:
		if c.MockUserID == "" {
			return fmt.Errorf("MOCK_USER_ID is required when mock auth is active")
		}
	case AuthManaged, AuthOAuth:
		if c.PublicURL == "" {
			return fmt.Errorf("PUBLIC_URL is required for %s auth", c.AuthMode)
		}
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required for %s auth", c.AuthMode)
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s auth (sessions are stored in Postgres)", c.AuthMode)
		}
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether a database is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
