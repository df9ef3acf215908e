// Package auth authenticates API requests in one of three modes chosen at
// startup: managed-platform OAuth, mock identity, or direct Google OAuth.
//
// Every mode ends in the same place: Middleware puts the caller's identity
// on the request context, and RequireAuth / RequireAdmin gate routes on it.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/albapepper/pitchside/internal/api/respond"
	"github.com/albapepper/pitchside/internal/config"
	"github.com/albapepper/pitchside/internal/store"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// UserStore is the slice of the repository auth needs.
type UserStore interface {
	UpsertUser(ctx context.Context, u store.User) error
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Options configures an Auth. Endpoint and UserInfoURL default to Google.
type Options struct {
	Mode               config.AuthMode
	MockUser           store.User
	PublicURL          string
	GoogleClientID     string
	GoogleClientSecret string
	SessionTTL         time.Duration
	SecureCookies      bool
	AdminUserIDs       []string

	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// OptionsFromConfig maps the process configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode: cfg.AuthMode,
		MockUser: store.User{
			ID:        cfg.MockUserID,
			FirstName: cfg.MockFirstName,
			LastName:  cfg.MockLastName,
		},
		PublicURL:          cfg.PublicURL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		SessionTTL:         cfg.SessionTTL,
		SecureCookies:      cfg.IsProduction(),
		AdminUserIDs:       cfg.AdminUserIDs,
	}
}

// Auth holds the active mode and its dependencies.
type Auth struct {
	mode        config.AuthMode
	mock        store.User
	oauth       *oauth2.Config
	userInfoURL string
	sessionTTL  time.Duration
	secure      bool
	admins      map[string]bool
	sessions    store.SessionStore
	users       UserStore
	logger      *slog.Logger
	now         func() time.Time
}

// New validates opts for the chosen mode. sessions and users may be nil in
// mock mode only.
func New(opts Options, sessions store.SessionStore, users UserStore, logger *slog.Logger) (*Auth, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Auth{
		mode:       opts.Mode,
		sessionTTL: opts.SessionTTL,
		secure:     opts.SecureCookies,
		admins:     make(map[string]bool, len(opts.AdminUserIDs)),
		sessions:   sessions,
		users:      users,
		logger:     logger,
		now:        time.Now,
	}
	if a.sessionTTL <= 0 {
		a.sessionTTL = 7 * 24 * time.Hour
	}
	for _, id := range opts.AdminUserIDs {
		a.admins[id] = true
	}

	switch opts.Mode {
	case config.AuthMock:
		if opts.MockUser.ID == "" {
			return nil, fmt.Errorf("auth: MOCK_USER_ID is required when mock auth is enabled")
		}
		a.mock = opts.MockUser
		return a, nil

	case config.AuthManaged, config.AuthOAuth:
		if opts.PublicURL == "" {
			return nil, fmt.Errorf("auth: PUBLIC_URL is required for %s auth", opts.Mode)
		}
		if sessions == nil || users == nil {
			return nil, fmt.Errorf("auth: %s auth needs a session store and user store", opts.Mode)
		}
		endpoint := opts.Endpoint
		if endpoint.AuthURL == "" {
			endpoint = endpoints.Google
		}
		a.userInfoURL = opts.UserInfoURL
		if a.userInfoURL == "" {
			a.userInfoURL = GoogleUserInfoURL
		}
		a.oauth = &oauth2.Config{
			ClientID:     opts.GoogleClientID,
			ClientSecret: opts.GoogleClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  opts.PublicURL + a.callbackPath(),
			Scopes:       []string{"openid", "profile", "email"},
		}
		return a, nil

	default:
		return nil, fmt.Errorf("auth: unknown mode %d", opts.Mode)
	}
}

// Mode returns the active mode.
func (a *Auth) Mode() config.AuthMode { return a.mode }

func (a *Auth) callbackPath() string {
	if a.mode == config.AuthManaged {
		return "/api/callback"
	}
	return "/api/auth/google/callback"
}

// --------------------------------------------------------------------------
// Identity on the request context
// --------------------------------------------------------------------------

type ctxKey struct{}

// WithUser returns ctx carrying u as the authenticated caller.
func WithUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the authenticated caller, or nil.
func UserFrom(ctx context.Context) *store.User {
	u, _ := ctx.Value(ctxKey{}).(*store.User)
	return u
}

// --------------------------------------------------------------------------
// Middleware
// --------------------------------------------------------------------------

// Middleware resolves the caller's identity. In mock mode every request is
// the mock user; otherwise the session cookie is looked up. Anonymous
// requests pass through untouched.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.mode == config.AuthMock {
			u := a.mock
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &u)))
			return
		}
		if u := a.sessionUser(r); u != nil {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without an identity.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFrom(r.Context())
		if u == nil {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		if u.ID == "" {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user identity")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin must run after RequireAuth. With no admins configured every
// authenticated user passes.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFrom(r.Context())
		if u == nil || u.ID == "" {
			respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		if len(a.admins) > 0 && !a.admins[u.ID] {
			respond.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------------------------------------------------------------------------
// Routes
// --------------------------------------------------------------------------

// Routes mounts the login, callback, logout and current-user endpoints of
// the active mode.
func (a *Auth) Routes(r chi.Router) {
	switch a.mode {
	case config.AuthManaged:
		r.Get("/api/login", a.BeginLogin)
		r.Get("/api/callback", a.Callback)
		r.Get("/api/logout", a.LogoutRedirect)
		r.Get("/api/auth/user", a.CurrentUser)
	case config.AuthMock:
		r.Get("/api/auth/user", a.CurrentUser)
		r.Get("/api/logout", a.LogoutRedirect)
		r.Post("/api/auth/logout", a.LogoutJSON)
	case config.AuthOAuth:
		r.Get("/api/auth/google", a.BeginLogin)
		r.Get("/api/auth/google/callback", a.Callback)
		r.Get("/api/auth/user", a.CurrentUser)
		r.Get("/api/logout", a.LogoutRedirect)
		r.Post("/api/auth/logout", a.LogoutJSON)
	}
}

// CurrentUser returns the caller, or 401.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} store.User
// @Failure 401 {object} respond.ErrorResponse
// @Router /api/auth/user [get]
func (a *Auth) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u := UserFrom(r.Context())
	if u == nil {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, u)
}

// LogoutRedirect ends the session and sends the browser home.
func (a *Auth) LogoutRedirect(w http.ResponseWriter, r *http.Request) {
	a.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// LogoutJSON ends the session and answers {"success": true}.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/auth/logout [post]
func (a *Auth) LogoutJSON(w http.ResponseWriter, r *http.Request) {
	a.endSession(w, r)
	respond.WriteJSONObject(w, http.StatusOK, map[string]bool{"success": true})
}
