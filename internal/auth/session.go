package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/pitchside/internal/config"
	"github.com/albapepper/pitchside/internal/store"
)

const (
	// SessionCookie holds the opaque session id.
	SessionCookie = "fc.sid"
	stateCookie   = "fc.state"
	stateTTL      = 10 * time.Minute
)

func (a *Auth) sessionUser(r *http.Request) *store.User {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil
	}

	ctx := r.Context()
	sess, err := a.sessions.GetSession(ctx, c.Value)
	if err != nil {
		a.logger.Warn("session lookup failed", "error", err)
		return nil
	}
	if sess == nil || !sess.ExpiresAt.After(a.now()) {
		return nil
	}

	u, err := a.users.GetUser(ctx, sess.UserID)
	if err != nil {
		a.logger.Warn("session user lookup failed", "user_id", sess.UserID, "error", err)
		return nil
	}
	if u == nil {
		// Session outlived its user row; the id alone still identifies.
		return &store.User{ID: sess.UserID}
	}
	return u
}

func (a *Auth) startSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	sess := store.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: a.now().Add(a.sessionTTL),
	}
	if err := a.sessions.CreateSession(ctx, sess); err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	http.SetCookie(w, a.cookie(SessionCookie, sess.ID, a.sessionTTL))
	return nil
}

func (a *Auth) endSession(w http.ResponseWriter, r *http.Request) {
	if a.mode == config.AuthMock {
		return
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if err := a.sessions.DeleteSession(r.Context(), c.Value); err != nil {
			a.logger.Warn("session delete failed", "error", err)
		}
	}
	http.SetCookie(w, a.cookie(SessionCookie, "", -1))
}

// cookie builds an HttpOnly, SameSite=Lax cookie. A negative ttl clears it.
func (a *Auth) cookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = a.now().Add(ttl)
	}
	return c
}
