package live_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/albapepper/pitchside/internal/live"
	"github.com/albapepper/pitchside/internal/provider/fpl"
)

const fixturesJSON = `[
	{"id": 10, "event": 7, "started": true, "finished": false, "minutes": 63,
	 "team_h": 1, "team_a": 2, "team_h_score": 2, "team_a_score": 1,
	 "stats": [{"identifier": "goals_scored", "a": [{"value": 1, "element": 301}], "h": [{"value": 2, "element": 101}]}]},
	{"id": 11, "event": 7, "started": true, "finished": true, "minutes": 90,
	 "team_h": 3, "team_a": 4, "team_h_score": 0, "team_a_score": 0, "stats": []},
	{"id": 12, "event": 7, "started": false, "finished": false, "minutes": 0,
	 "team_h": 2, "team_a": 3, "team_h_score": null, "team_a_score": null, "stats": []},
	{"id": 13, "event": 7, "started": null, "finished": false, "minutes": 0,
	 "team_h": 4, "team_a": 1, "stats": []}
]`

var teams = []fpl.Team{
	{ID: 1, Name: "Arsenal", ShortName: "ARS"},
	{ID: 2, Name: "Chelsea", ShortName: "CHE"},
	{ID: 3, Name: "Liverpool", ShortName: "LIV"},
	{ID: 4, Name: "Everton", ShortName: "EVE"},
}

const liveJSON = `{"elements": [
	{"id": 101, "stats": {"minutes": 63, "goals_scored": 2}, "explain": [{"fixture": 10}]},
	{"id": 301, "stats": {"minutes": 63, "goals_scored": 1}, "explain": [{"fixture": 10}]},
	{"id": 400, "stats": {"minutes": 90}, "explain": [{"fixture": 11}]}
]}`

func decode(t *testing.T, data string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestBuild(t *testing.T) {
	var fixtures []fpl.Fixture
	decode(t, fixturesJSON, &fixtures)
	var payload fpl.EventLive
	decode(t, liveJSON, &payload)

	games := live.Build(fixtures, teams, payload.Elements)
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1 (only started and unfinished)", len(games))
	}

	g := games[0]
	if g.ID != 10 || g.Minutes != 63 || !g.Started || g.Finished {
		t.Errorf("unexpected game header: %+v", g)
	}
	if g.HomeTeam.Name != "Arsenal" || g.AwayTeam.ShortName != "CHE" {
		t.Errorf("teams = %+v / %+v", g.HomeTeam, g.AwayTeam)
	}
	if g.HomeTeam.Score == nil || *g.HomeTeam.Score != 2 {
		t.Errorf("home score = %v, want 2", g.HomeTeam.Score)
	}
	if g.Clock != "63'" {
		t.Errorf("clock = %q, want 63'", g.Clock)
	}
	if len(g.PlayerStats) != 2 {
		t.Errorf("player stats = %d, want 2 attributed to fixture 10", len(g.PlayerStats))
	}
	if g.StatsSummary.Shots != nil || g.StatsSummary.Possession != nil {
		t.Errorf("FPL carries no shot data, summary should be null: %+v", g.StatsSummary)
	}
	if g.Scoreboard.Shots.Home.IsKnown() {
		t.Error("shots should be unknown")
	}
}

func TestBuild_NoFixtures(t *testing.T) {
	games := live.Build(nil, nil, nil)
	if games == nil || len(games) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", games)
	}
	out, _ := json.Marshal(games)
	if string(out) != "[]" {
		t.Errorf("marshal = %s, want []", out)
	}
}

func TestBuild_SummaryNullsInJSON(t *testing.T) {
	var fixtures []fpl.Fixture
	decode(t, fixturesJSON, &fixtures)
	games := live.Build(fixtures, teams, nil)

	out, err := json.Marshal(games[0])
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	decode(t, string(out), &m)

	var summary map[string]json.RawMessage
	decode(t, string(m["statsSummary"]), &summary)
	for _, k := range []string{"shots", "onTarget", "possession"} {
		if string(summary[k]) != "null" {
			t.Errorf("statsSummary.%s = %s, want null", k, summary[k])
		}
	}
	if string(m["playerStats"]) != "[]" {
		t.Errorf("playerStats = %s, want []", m["playerStats"])
	}
}

// --------------------------------------------------------------------------
// Service
// --------------------------------------------------------------------------

type fakeUpstream struct {
	boot      *fpl.Bootstrap
	fixtures  []fpl.Fixture
	live      *fpl.EventLive
	err       error
	liveCalls []int
}

func (f *fakeUpstream) Bootstrap(context.Context) (*fpl.Bootstrap, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.boot, nil
}

func (f *fakeUpstream) Fixtures(context.Context) ([]fpl.Fixture, error) {
	return f.fixtures, nil
}

func (f *fakeUpstream) EventLive(_ context.Context, event int) (*fpl.EventLive, error) {
	f.liveCalls = append(f.liveCalls, event)
	return f.live, nil
}

func TestService_LiveGames(t *testing.T) {
	up := &fakeUpstream{
		boot: &fpl.Bootstrap{
			Teams:  teams,
			Events: []fpl.Event{{ID: 6, Finished: true}, {ID: 7, IsCurrent: true}},
		},
	}
	decode(t, fixturesJSON, &up.fixtures)
	up.live = &fpl.EventLive{}
	decode(t, liveJSON, up.live)

	games, err := live.NewService(up).LiveGames(context.Background())
	if err != nil {
		t.Fatalf("LiveGames: %v", err)
	}
	if len(games) != 1 || len(games[0].PlayerStats) != 2 {
		t.Fatalf("unexpected games: %+v", games)
	}
	if len(up.liveCalls) != 1 || up.liveCalls[0] != 7 {
		t.Errorf("live payload requested for %v, want [7]", up.liveCalls)
	}
}

func TestService_SkipsLivePayloadWhenNothingInPlay(t *testing.T) {
	up := &fakeUpstream{
		boot:     &fpl.Bootstrap{Teams: teams, Events: []fpl.Event{{ID: 1, IsCurrent: true}}},
		fixtures: []fpl.Fixture{{ID: 1, Finished: true}},
	}
	games, err := live.NewService(up).LiveGames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 0 || len(up.liveCalls) != 0 {
		t.Errorf("games=%d liveCalls=%v, want none", len(games), up.liveCalls)
	}
}

func TestService_UpstreamError(t *testing.T) {
	up := &fakeUpstream{err: errors.New("FPL bootstrap-static/ returned 503: down")}
	if _, err := live.NewService(up).LiveGames(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
