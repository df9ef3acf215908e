package fpl_test

import (
	"encoding/json"
	"testing"

	"github.com/albapepper/pitchside/internal/provider/fpl"
)

func decodeBootstrap(t *testing.T) *fpl.Bootstrap {
	t.Helper()
	var b fpl.Bootstrap
	if err := json.Unmarshal([]byte(bootstrapJSON), &b); err != nil {
		t.Fatalf("decode bootstrap: %v", err)
	}
	return &b
}

func TestBootstrap_Players(t *testing.T) {
	players := decodeBootstrap(t).Players()
	if len(players) != 3 {
		t.Fatalf("players = %d, want 3", len(players))
	}
	saka := players[0]
	if saka.TeamName != "Arsenal" || saka.PositionShort != "MID" {
		t.Errorf("join failed: %+v", saka)
	}
	if saka.NowCost != 10.0 {
		t.Errorf("now_cost = %v, want 10.0", saka.NowCost)
	}
	want := "https://resources.premierleague.com/premierleague/photos/players/110x140/p223340.png"
	if saka.PhotoURL != want {
		t.Errorf("photo = %q", saka.PhotoURL)
	}
}

func TestBootstrap_Injuries(t *testing.T) {
	injuries := decodeBootstrap(t).Injuries()
	if len(injuries) != 1 || injuries[0].WebName != "Raya" {
		t.Fatalf("injuries = %+v", injuries)
	}
	if injuries[0].StatusLabel != "doubtful" {
		t.Errorf("status label = %q", injuries[0].StatusLabel)
	}
}

func TestBootstrap_CurrentEvent(t *testing.T) {
	b := decodeBootstrap(t)
	ev, ok := b.CurrentEvent()
	if !ok || ev.ID != 2 {
		t.Errorf("current = %+v, %v; want 2", ev, ok)
	}

	b.Events[1].IsCurrent = false
	if ev, _ := b.CurrentEvent(); ev.ID != 1 {
		t.Errorf("fallback = %d, want latest finished 1", ev.ID)
	}

	if _, ok := (&fpl.Bootstrap{}).CurrentEvent(); ok {
		t.Error("empty bootstrap should have no current event")
	}
}

func TestElementTypeFor(t *testing.T) {
	for code, want := range map[string]int{"GK": 1, "def": 2, " Mid ": 3, "FWD": 4} {
		got, ok := fpl.ElementTypeFor(code)
		if !ok || got != want {
			t.Errorf("ElementTypeFor(%q) = %d, %v", code, got, ok)
		}
	}
	if _, ok := fpl.ElementTypeFor("GKP"); ok {
		t.Error("GKP is not a recognised code")
	}
}
