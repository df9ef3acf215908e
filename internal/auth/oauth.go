package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/albapepper/pitchside/internal/store"
)

// googleProfile is the subset of the OpenID userinfo response we keep.
type googleProfile struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// BeginLogin redirects to the provider's consent page with a fresh state
// value, remembered in a short-lived cookie.
func (a *Auth) BeginLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, a.cookie(stateCookie, state, stateTTL))
	http.Redirect(w, r, a.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the code exchange, upserts the user, starts a session
// and redirects home. Any failure redirects home without a session.
func (a *Auth) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	http.SetCookie(w, a.cookie(stateCookie, "", -1))

	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		a.logger.Warn("oauth callback state mismatch")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if e := q.Get("error"); e != "" {
		a.logger.Info("oauth login declined", "error", e)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	ctx := r.Context()
	tok, err := a.oauth.Exchange(ctx, q.Get("code"))
	if err != nil {
		a.logger.Error("oauth code exchange failed", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	profile, err := a.fetchProfile(ctx, a.oauth.Client(ctx, tok))
	if err != nil {
		a.logger.Error("oauth userinfo failed", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	user := store.User{
		ID:              profile.Sub,
		Email:           profile.Email,
		FirstName:       profile.GivenName,
		LastName:        profile.FamilyName,
		ProfileImageURL: profile.Picture,
	}
	if err := a.users.UpsertUser(ctx, user); err != nil {
		a.logger.Error("upserting user failed", "user_id", user.ID, "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := a.startSession(ctx, w, user.ID); err != nil {
		a.logger.Error("starting session failed", "user_id", user.ID, "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	a.logger.Info("user logged in", "user_id", user.ID, "mode", a.mode.String())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Auth) fetchProfile(ctx context.Context, client *http.Client) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if p.Sub == "" {
		return nil, fmt.Errorf("userinfo has no subject")
	}
	return &p, nil
}
