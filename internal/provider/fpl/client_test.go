package fpl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/albapepper/pitchside/internal/cache"
	"github.com/albapepper/pitchside/internal/provider/fpl"
)

const bootstrapJSON = `{
	"events": [
		{"id": 1, "name": "Gameweek 1", "finished": true, "is_current": false},
		{"id": 2, "name": "Gameweek 2", "finished": false, "is_current": true}
	],
	"teams": [
		{"id": 1, "name": "Arsenal", "short_name": "ARS"},
		{"id": 14, "name": "Man Utd", "short_name": "MUN"}
	],
	"element_types": [{"id": 1, "singular_name_short": "GKP"}],
	"elements": [
		{"id": 7, "first_name": "Bukayo", "second_name": "Saka", "web_name": "Saka", "team": 1, "element_type": 3, "now_cost": 100, "status": "a", "photo": "223340.jpg"},
		{"id": 9, "first_name": "David", "second_name": "Raya Martin", "web_name": "Raya", "team": 1, "element_type": 1, "now_cost": 55, "status": "d", "news": "Knock", "chance_of_playing_next_round": 75},
		{"id": 31, "first_name": "Bruno", "second_name": "Borges Fernandes", "web_name": "B.Fernandes", "team": 14, "element_type": 3, "now_cost": 90, "status": "a"}
	]
}`

const fixturesJSON = `[
	{"id": 10, "event": 2, "kickoff_time": "2025-08-23T11:30:00Z", "started": true, "finished": false, "minutes": 63, "team_h": 1, "team_a": 14, "team_h_score": 1, "team_a_score": 0, "stats": [{"identifier": "goals_scored", "h": [{"value": 1, "element": 7}], "a": []}]},
	{"id": 11, "event": 2, "kickoff_time": "2025-08-23T14:00:00Z", "started": false, "finished": false, "minutes": 0, "team_h": 14, "team_a": 1, "team_h_score": null, "team_a_score": null, "stats": []},
	{"id": 12, "event": 1, "kickoff_time": "2025-08-16T14:00:00Z", "started": true, "finished": true, "minutes": 90, "team_h": 14, "team_a": 1, "team_h_score": 2, "team_a_score": 2, "stats": []},
	{"id": 13, "event": null, "kickoff_time": null, "started": null, "finished": false, "minutes": 0, "team_h": 1, "team_a": 14, "stats": []}
]`

type upstream struct {
	srv          *httptest.Server
	bootstrap    atomic.Int32
	fixtures     atomic.Int32
	failFixtures bool
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bootstrap-static/":
			u.bootstrap.Add(1)
			w.Write([]byte(bootstrapJSON))
		case "/fixtures/":
			u.fixtures.Add(1)
			if u.failFixtures {
				http.Error(w, "upstream down", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(fixturesJSON))
		case "/event/2/live/":
			w.Write([]byte(`{"elements":[{"id":7,"stats":{"minutes":63,"goals_scored":1},"explain":[{"fixture":10}]}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newClient(u *upstream) *fpl.Client {
	return fpl.NewClient(u.srv.URL, 6000, cache.NewMemory(true), nil)
}

func TestClient_BootstrapCached(t *testing.T) {
	u := newUpstream(t)
	c := newClient(u)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b, err := c.Bootstrap(ctx)
		if err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		if len(b.Elements) != 3 {
			t.Fatalf("elements = %d, want 3", len(b.Elements))
		}
	}
	if n := u.bootstrap.Load(); n != 1 {
		t.Errorf("upstream bootstrap calls = %d, want 1", n)
	}
}

func TestClient_Fixtures(t *testing.T) {
	u := newUpstream(t)
	c := newClient(u)

	fixtures, err := c.Fixtures(context.Background())
	if err != nil {
		t.Fatalf("Fixtures: %v", err)
	}
	if len(fixtures) != 4 {
		t.Fatalf("fixtures = %d, want 4", len(fixtures))
	}
	if !fixtures[0].IsLive() || !fixtures[1].IsUpcoming() || !fixtures[3].IsUpcoming() {
		t.Error("unexpected fixture status flags")
	}
	if fixtures[1].TeamHScore != nil {
		t.Error("null score should decode as nil")
	}
}

func TestClient_UpstreamError(t *testing.T) {
	u := newUpstream(t)
	u.failFixtures = true
	c := newClient(u)

	_, err := c.Fixtures(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "returned 503") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestClient_WarmRefetches(t *testing.T) {
	u := newUpstream(t)
	c := newClient(u)
	ctx := context.Background()

	if _, err := c.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Warm(ctx); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if n := u.bootstrap.Load(); n != 2 {
		t.Errorf("bootstrap calls = %d, want 2 (warm bypasses cache)", n)
	}
	if n := u.fixtures.Load(); n != 1 {
		t.Errorf("fixtures calls = %d, want 1", n)
	}
}

func TestClient_WarmFailsWhole(t *testing.T) {
	u := newUpstream(t)
	u.failFixtures = true
	c := newClient(u)

	if err := c.Warm(context.Background()); err == nil {
		t.Fatal("expected Warm to fail when fixtures fail")
	}
}

func TestClient_EventLive(t *testing.T) {
	u := newUpstream(t)
	c := newClient(u)

	live, err := c.EventLive(context.Background(), 2)
	if err != nil {
		t.Fatalf("EventLive: %v", err)
	}
	if len(live.Elements) != 1 || !live.Elements[0].InFixture(10) {
		t.Errorf("unexpected live payload: %+v", live)
	}
}
