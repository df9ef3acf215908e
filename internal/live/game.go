// Package live assembles in-play games from FPL fixtures and pushes them to
// WebSocket subscribers.
package live

import (
	"encoding/json"
	"time"

	"github.com/albapepper/pitchside/internal/livestats"
	"github.com/albapepper/pitchside/internal/provider/fpl"
)

// Side is one team in a live game.
type Side struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Score     *int   `json:"score"`
}

// StatsSummary carries the per-side shot and possession readings. A nil
// pair marshals as null when the feed has no such data.
type StatsSummary struct {
	Shots      *livestats.Pair `json:"shots"`
	OnTarget   *livestats.Pair `json:"onTarget"`
	Possession *livestats.Pair `json:"possession"`
}

// PlayerStat is one player's raw live stat blob for the game.
type PlayerStat struct {
	ID    int             `json:"id"`
	Stats json.RawMessage `json:"stats"`
}

// Game is a fixture in progress with its derived display fields.
type Game struct {
	ID           int                  `json:"id"`
	KickoffTime  *time.Time           `json:"kickoffTime"`
	Started      bool                 `json:"started"`
	Finished     bool                 `json:"finished"`
	Minutes      int                  `json:"minutes"`
	HomeTeam     Side                 `json:"homeTeam"`
	AwayTeam     Side                 `json:"awayTeam"`
	Stats        []json.RawMessage    `json:"stats"`
	StatsSummary StatsSummary         `json:"statsSummary"`
	PlayerStats  []PlayerStat         `json:"playerStats"`
	Scoreboard   livestats.Scoreboard `json:"scoreboard"`
	Clock        string               `json:"clock"`
}

// Build selects the fixtures that are started and not finished and turns
// each into a Game. Team names come from teams; player blobs are attached
// when their explain block references the fixture. Never returns nil.
func Build(fixtures []fpl.Fixture, teams []fpl.Team, elements []fpl.LiveElement) []Game {
	idx := make(map[int]fpl.Team, len(teams))
	for _, t := range teams {
		idx[t.ID] = t
	}

	games := make([]Game, 0)
	for _, f := range fixtures {
		if !f.IsLive() {
			continue
		}
		games = append(games, buildGame(f, idx, elements))
	}
	return games
}

func buildGame(f fpl.Fixture, teams map[int]fpl.Team, elements []fpl.LiveElement) Game {
	entries := livestats.DecodeAll(f.Stats)
	summary := summarize(entries)

	stats := f.Stats
	if stats == nil {
		stats = []json.RawMessage{}
	}

	players := make([]PlayerStat, 0)
	for _, le := range elements {
		if le.InFixture(f.ID) {
			players = append(players, PlayerStat{ID: le.ID, Stats: le.Stats})
		}
	}

	return Game{
		ID:           f.ID,
		KickoffTime:  f.KickoffTime,
		Started:      f.HasStarted(),
		Finished:     f.Finished,
		Minutes:      f.Minutes,
		HomeTeam:     side(teams, f.TeamH, f.TeamHScore),
		AwayTeam:     side(teams, f.TeamA, f.TeamAScore),
		Stats:        stats,
		StatsSummary: summary,
		PlayerStats:  players,
		Scoreboard: livestats.BuildScoreboard(entries, &livestats.Summary{
			Shots:      summary.Shots,
			OnTarget:   summary.OnTarget,
			Possession: summary.Possession,
		}),
		Clock: livestats.ClockLabel(f.Minutes),
	}
}

func side(teams map[int]fpl.Team, id int, score *int) Side {
	t := teams[id]
	return Side{ID: id, Name: t.Name, ShortName: t.ShortName, Score: score}
}

// summarize keeps a metric only when at least one side has a reading.
// FPL fixtures carry no shot or possession data, so this is all nulls there.
func summarize(entries []livestats.Entry) StatsSummary {
	pick := func(keys []string) *livestats.Pair {
		p := livestats.ExtractPair(entries, keys)
		if !p.Home.IsKnown() && !p.Away.IsKnown() {
			return nil
		}
		return &p
	}
	return StatsSummary{
		Shots:      pick(livestats.ShotsKeys),
		OnTarget:   pick(livestats.OnTargetKeys),
		Possession: pick(livestats.PossessionKeys),
	}
}
