package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/albapepper/pitchside/internal/api"
	"github.com/albapepper/pitchside/internal/api/handler"
	"github.com/albapepper/pitchside/internal/auth"
	"github.com/albapepper/pitchside/internal/cards"
	"github.com/albapepper/pitchside/internal/config"
	"github.com/albapepper/pitchside/internal/live"
	"github.com/albapepper/pitchside/internal/provider/fpl"
	"github.com/albapepper/pitchside/internal/provider/sorare"
	"github.com/albapepper/pitchside/internal/store"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeFPL struct {
	fixtures []fpl.Fixture
	players  []fpl.Player
	summary  json.RawMessage
	err      error
	warmErr  error
	warmed   int
}

func (f *fakeFPL) Fixtures(context.Context) ([]fpl.Fixture, error) { return f.fixtures, f.err }
func (f *fakeFPL) Players(context.Context) ([]fpl.Player, error)   { return f.players, f.err }
func (f *fakeFPL) Injuries(context.Context) ([]fpl.Player, error)  { return []fpl.Player{}, f.err }

func (f *fakeFPL) PlayerSummary(context.Context, int) (json.RawMessage, error) {
	return f.summary, f.err
}

func (f *fakeFPL) Warm(context.Context) error {
	f.warmed++
	return f.warmErr
}

type fakeSorare struct {
	player *sorare.Player
	calls  [][2]string
}

func (f *fakeSorare) FindPlayer(_ context.Context, first, last string) (*sorare.Player, error) {
	f.calls = append(f.calls, [2]string{first, last})
	return f.player, nil
}

type fakeLive struct {
	games []live.Game
	err   error
}

func (f *fakeLive) LiveGames(context.Context) ([]live.Game, error) { return f.games, f.err }

type fakeRepo struct {
	cards   map[string][]cards.Card
	players map[int]*cards.Player
}

func (r *fakeRepo) Ping(context.Context) error { return nil }

func (r *fakeRepo) GetUserCards(_ context.Context, userID string) ([]cards.Card, error) {
	return r.cards[userID], nil
}

func (r *fakeRepo) GetPlayer(_ context.Context, id int) (*cards.Player, error) {
	return r.players[id], nil
}

func (r *fakeRepo) UpsertUser(context.Context, store.User) error { return nil }

func (r *fakeRepo) GetUser(context.Context, string) (*store.User, error) { return nil, nil }

func (r *fakeRepo) UpsertTeam(context.Context, store.Team) error { return nil }

func (r *fakeRepo) UpsertPlayer(context.Context, cards.Player) error { return nil }

func (r *fakeRepo) MintCard(context.Context, string, int, cards.Rarity, int) (*cards.Card, error) {
	return nil, errors.New("not implemented")
}

type env struct {
	fpl    *fakeFPL
	sorare *fakeSorare
	live   *fakeLive
	repo   *fakeRepo
	feed   *live.Feed
	admins []string
	noDB   bool

	syncRequiresAdmin bool
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEnv() *env {
	yes := true
	return &env{
		fpl: &fakeFPL{
			fixtures: []fpl.Fixture{{ID: 1}, {ID: 2, Started: &yes}, {ID: 3, Started: &yes, Finished: true}},
			players: []fpl.Player{
				{ID: 1, FirstName: "Bukayo", SecondName: "Saka", PositionShort: "MID", ElementType: 3},
				{ID: 2, FirstName: "Erling", SecondName: "Haaland", PositionShort: "FWD", ElementType: 4},
				{ID: 3, FirstName: "Cole", SecondName: "Palmer", PositionShort: "MID", ElementType: 3},
			},
			summary: json.RawMessage(`{"fixtures":[],"history":[]}`),
		},
		sorare: &fakeSorare{},
		live:   &fakeLive{games: []live.Game{}},
		repo: &fakeRepo{
			cards: map[string][]cards.Card{
				"u1": {{UserID: "u1", PlayerID: 7, Rarity: cards.Legendary, SerialNumber: 3, MaxSupply: 10}},
			},
			players: map[int]*cards.Player{7: {ID: 7, Name: "Bukayo Saka"}},
		},
	}
}

func (e *env) server(t *testing.T) http.Handler {
	t.Helper()
	a, err := auth.New(auth.Options{
		Mode:         config.AuthMock,
		MockUser:     store.User{ID: "u1", FirstName: "Mock", LastName: "User"},
		AdminUserIDs: e.admins,
	}, nil, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	deps := handler.Deps{
		FPL:            e.fpl,
		Sorare:         e.sorare,
		Live:           e.live,
		Feed:           e.feed,
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         quietLogger(),
	}
	if !e.noDB {
		deps.Repo = e.repo
	}
	cfg := &config.Config{
		CORSAllowOrigins:  []string{"http://localhost:5173"},
		SyncRequiresAdmin: e.syncRequiresAdmin,
	}
	return api.NewRouter(handler.New(deps), a, cfg, quietLogger())
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// --------------------------------------------------------------------------
// EPL
// --------------------------------------------------------------------------

func TestStandings(t *testing.T) {
	rec := do(t, newEnv().server(t), http.MethodGet, "/api/epl/standings")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("standings = %d %q", rec.Code, rec.Body.String())
	}
}

func TestFixtures_StatusFilter(t *testing.T) {
	srv := newEnv().server(t)
	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?status=upcoming", 1},
		{"?status=LIVE", 1},
		{"?status=ft", 1},
		{"?status=whatever", 3},
	}
	for _, tt := range tests {
		rec := do(t, srv, http.MethodGet, "/api/epl/fixtures"+tt.query)
		var body struct {
			Response []fpl.Fixture `json:"response"`
		}
		decodeBody(t, rec, &body)
		if len(body.Response) != tt.want {
			t.Errorf("%q: got %d fixtures, want %d", tt.query, len(body.Response), tt.want)
		}
	}
}

func TestPlayers_Paging(t *testing.T) {
	srv := newEnv().server(t)

	rec := do(t, srv, http.MethodGet, "/api/epl/players?position=MID&limit=1&page=2")
	var page handler.PlayerPage
	decodeBody(t, rec, &page)
	if page.Total != 2 || page.Results != 1 || page.Paging.Total != 2 || page.Paging.Current != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Response[0].ID != 3 {
		t.Errorf("player = %d, want 3", page.Response[0].ID)
	}

	rec = do(t, srv, http.MethodGet, "/api/epl/players?page=50")
	decodeBody(t, rec, &page)
	if page.Results != 0 || page.Total != 3 || page.Paging.Total != 1 {
		t.Errorf("past-the-end page = %+v", page)
	}
}

func TestUpstreamFailure(t *testing.T) {
	e := newEnv()
	e.fpl.err = errors.New("FPL /fixtures/ returned 502: bad gateway")
	rec := do(t, e.server(t), http.MethodGet, "/api/epl/fixtures")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body errorBody
	decodeBody(t, rec, &body)
	if body.Message != "Failed to fetch fixtures" || !strings.Contains(body.Error, "502") {
		t.Errorf("error body = %+v", body)
	}
}

func TestPlayerSummary_ETag(t *testing.T) {
	srv := newEnv().server(t)

	rec := do(t, srv, http.MethodGet, "/api/epl/players/10/summary")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"fixtures":[],"history":[]}` {
		t.Fatalf("summary = %d %q", rec.Code, rec.Body.String())
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/epl/players/10/summary", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional request = %d, want 304", rec.Code)
	}

	if rec := do(t, srv, http.MethodGet, "/api/epl/players/abc/summary"); rec.Code != http.StatusNotFound {
		t.Errorf("non-integer id = %d, want 404", rec.Code)
	}
}

func TestLiveGames(t *testing.T) {
	e := newEnv()
	srv := e.server(t)
	rec := do(t, srv, http.MethodGet, "/api/epl/live-games")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("live games = %d %q", rec.Code, rec.Body.String())
	}

	e.live.err = errors.New("timeout")
	if rec := do(t, srv, http.MethodGet, "/api/epl/live-games"); rec.Code != http.StatusInternalServerError {
		t.Errorf("failing live games = %d, want 500", rec.Code)
	}
}

func TestSync(t *testing.T) {
	e := newEnv()
	rec := do(t, e.server(t), http.MethodPost, "/api/epl/sync")
	var ok struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &ok)
	if rec.Code != http.StatusOK || !ok.Success || e.fpl.warmed != 1 {
		t.Fatalf("sync = %d %+v warmed=%d", rec.Code, ok, e.fpl.warmed)
	}

	e.fpl.warmErr = errors.New("FPL /bootstrap-static/ returned 503: down")
	rec = do(t, e.server(t), http.MethodPost, "/api/epl/sync")
	var body errorBody
	decodeBody(t, rec, &body)
	if rec.Code != http.StatusInternalServerError || body.Message != "Failed to sync data" || body.Error == "" {
		t.Errorf("failed sync = %d %+v", rec.Code, body)
	}
}

func TestSync_OpenByDefault(t *testing.T) {
	e := newEnv()
	e.admins = []string{"someone-else"}
	rec := do(t, e.server(t), http.MethodPost, "/api/epl/sync")
	if rec.Code != http.StatusOK || e.fpl.warmed != 1 {
		t.Fatalf("sync = %d warmed=%d, want 200 and one warm", rec.Code, e.fpl.warmed)
	}
}

func TestSync_AdminOnlyWhenEnabled(t *testing.T) {
	e := newEnv()
	e.admins = []string{"someone-else"}
	e.syncRequiresAdmin = true
	rec := do(t, e.server(t), http.MethodPost, "/api/epl/sync")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if e.fpl.warmed != 0 {
		t.Error("sync must not run for non-admins")
	}

	e.admins = []string{"u1"}
	if rec := do(t, e.server(t), http.MethodPost, "/api/epl/sync"); rec.Code != http.StatusOK {
		t.Errorf("admin sync status = %d, want 200", rec.Code)
	}
}

// --------------------------------------------------------------------------
// Sorare
// --------------------------------------------------------------------------

func TestSorarePlayer(t *testing.T) {
	e := newEnv()
	srv := e.server(t)

	for _, q := range []string{"", "?firstName=Bukayo", "?firstName=%20&lastName=Saka"} {
		if rec := do(t, srv, http.MethodGet, "/api/sorare/player"+q); rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", q, rec.Code)
		}
	}

	rec := do(t, srv, http.MethodGet, "/api/sorare/player?firstName=%20Bukayo&lastName=Saka%20")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "null" {
		t.Errorf("unknown player = %d %q, want null", rec.Code, rec.Body.String())
	}
	if len(e.sorare.calls) != 1 || e.sorare.calls[0] != [2]string{"Bukayo", "Saka"} {
		t.Errorf("lookups = %v, names should be trimmed", e.sorare.calls)
	}

	e.sorare.player = &sorare.Player{Slug: "bukayo-saka", DisplayName: "Bukayo Saka"}
	rec = do(t, srv, http.MethodGet, "/api/sorare/player?firstName=Bukayo&lastName=Saka")
	var p sorare.Player
	decodeBody(t, rec, &p)
	if p.Slug != "bukayo-saka" {
		t.Errorf("player = %+v", p)
	}
}

// --------------------------------------------------------------------------
// Cards and players
// --------------------------------------------------------------------------

func TestUserCards(t *testing.T) {
	rec := do(t, newEnv().server(t), http.MethodGet, "/api/user/cards")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []cards.Card
	decodeBody(t, rec, &got)
	if len(got) != 1 || got[0].Render == nil {
		t.Fatalf("cards = %+v", got)
	}
	if got[0].Render.SerialLabel != "3/10" {
		t.Errorf("serial label = %q", got[0].Render.SerialLabel)
	}
}

func TestPlayerByID(t *testing.T) {
	srv := newEnv().server(t)

	rec := do(t, srv, http.MethodGet, "/api/players/7")
	var p cards.Player
	decodeBody(t, rec, &p)
	if rec.Code != http.StatusOK || p.Name != "Bukayo Saka" {
		t.Fatalf("player = %d %+v", rec.Code, p)
	}

	for _, path := range []string{"/api/players/999", "/api/players/abc"} {
		rec := do(t, srv, http.MethodGet, path)
		var body errorBody
		decodeBody(t, rec, &body)
		if rec.Code != http.StatusNotFound || body.Message != "Player not found" {
			t.Errorf("%s = %d %+v", path, rec.Code, body)
		}
	}
}

func TestNoDatabase(t *testing.T) {
	e := newEnv()
	e.noDB = true
	srv := e.server(t)
	for _, path := range []string{"/api/players/7", "/api/user/cards", "/health/db"} {
		if rec := do(t, srv, http.MethodGet, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", path, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	srv := newEnv().server(t)
	for _, path := range []string{"/health", "/health/db", "/health/cache"} {
		if rec := do(t, srv, http.MethodGet, path); rec.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200", path, rec.Code)
		}
	}
}

// --------------------------------------------------------------------------
// Live feed over WebSocket
// --------------------------------------------------------------------------

type staticSource struct{ games []live.Game }

func (s staticSource) LiveGames(context.Context) ([]live.Game, error) { return s.games, nil }

func TestLiveGamesWS(t *testing.T) {
	e := newEnv()
	e.feed = live.NewFeed(staticSource{games: []live.Game{{ID: 42, Clock: "63'"}}}, time.Minute, quietLogger())
	if err := e.feed.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(e.server(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/epl/live-games/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg live.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != live.MessageTypeLiveGames || len(msg.Games) != 1 || msg.Games[0].ID != 42 {
		t.Errorf("snapshot = %+v", msg)
	}
}

func TestLiveGamesWS_RejectsForeignOrigin(t *testing.T) {
	e := newEnv()
	e.feed = live.NewFeed(staticSource{}, time.Minute, quietLogger())

	srv := httptest.NewServer(e.server(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/epl/live-games/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected handshake failure for foreign origin")
	}
}

func TestLiveGamesWS_Disabled(t *testing.T) {
	rec := do(t, newEnv().server(t), http.MethodGet, "/api/epl/live-games/ws")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
