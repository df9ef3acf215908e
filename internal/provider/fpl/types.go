package fpl

import (
	"encoding/json"
	"strings"
	"time"
)

// Bootstrap is the static snapshot from bootstrap-static/.
type Bootstrap struct {
	Events       []Event       `json:"events"`
	Teams        []Team        `json:"teams"`
	Elements     []Element     `json:"elements"`
	ElementTypes []ElementType `json:"element_types"`
}

// Event is a gameweek.
type Event struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	DeadlineTime *time.Time `json:"deadline_time"`
	Finished     bool       `json:"finished"`
	IsPrevious   bool       `json:"is_previous"`
	IsCurrent    bool       `json:"is_current"`
	IsNext       bool       `json:"is_next"`
}

// Team is a Premier League club.
type Team struct {
	ID        int    `json:"id"`
	Code      int    `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Strength  int    `json:"strength"`
}

// ElementType is a playing position.
type ElementType struct {
	ID                int    `json:"id"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
}

// Element is a player as FPL ships it.
type Element struct {
	ID                       int     `json:"id"`
	Code                     int     `json:"code"`
	FirstName                string  `json:"first_name"`
	SecondName               string  `json:"second_name"`
	WebName                  string  `json:"web_name"`
	Team                     int     `json:"team"`
	ElementType              int     `json:"element_type"`
	NowCost                  int     `json:"now_cost"`
	TotalPoints              int     `json:"total_points"`
	Form                     string  `json:"form"`
	PointsPerGame            string  `json:"points_per_game"`
	SelectedByPercent        string  `json:"selected_by_percent"`
	Status                   string  `json:"status"`
	News                     string  `json:"news"`
	NewsAdded                *string `json:"news_added"`
	ChanceOfPlayingNextRound *int    `json:"chance_of_playing_next_round"`
	ChanceOfPlayingThisRound *int    `json:"chance_of_playing_this_round"`
	Photo                    string  `json:"photo"`
	Minutes                  int     `json:"minutes"`
	GoalsScored              int     `json:"goals_scored"`
	Assists                  int     `json:"assists"`
	CleanSheets              int     `json:"clean_sheets"`
}

// Fixture is one match from fixtures/.
type Fixture struct {
	ID                   int               `json:"id"`
	Code                 int               `json:"code"`
	Event                *int              `json:"event"`
	KickoffTime          *time.Time        `json:"kickoff_time"`
	Started              *bool             `json:"started"`
	Finished             bool              `json:"finished"`
	FinishedProvisional  bool              `json:"finished_provisional"`
	Minutes              int               `json:"minutes"`
	TeamH                int               `json:"team_h"`
	TeamA                int               `json:"team_a"`
	TeamHScore           *int              `json:"team_h_score"`
	TeamAScore           *int              `json:"team_a_score"`
	TeamHDifficulty      int               `json:"team_h_difficulty"`
	TeamADifficulty      int               `json:"team_a_difficulty"`
	Stats                []json.RawMessage `json:"stats"`
	ProvisionalStartTime bool              `json:"provisional_start_time"`
}

// HasStarted treats a null started flag as not started.
func (f Fixture) HasStarted() bool { return f.Started != nil && *f.Started }

// IsLive is started and not finished.
func (f Fixture) IsLive() bool { return f.HasStarted() && !f.Finished }

// IsUpcoming is neither started nor finished.
func (f Fixture) IsUpcoming() bool { return !f.HasStarted() && !f.Finished }

// EventLive is the per-gameweek live payload from event/{id}/live/.
type EventLive struct {
	Elements []LiveElement `json:"elements"`
}

// LiveElement is one player's live stat blob. Stats is passed through
// untouched; Explain is decoded to attribute the player to fixtures.
type LiveElement struct {
	ID      int             `json:"id"`
	Stats   json.RawMessage `json:"stats"`
	Explain []struct {
		Fixture int `json:"fixture"`
	} `json:"explain"`
}

// InFixture reports whether the blob has points explained for fixtureID.
func (le LiveElement) InFixture(fixtureID int) bool {
	for _, e := range le.Explain {
		if e.Fixture == fixtureID {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Positions
// --------------------------------------------------------------------------

var positionCodes = map[int]string{1: "GK", 2: "DEF", 3: "MID", 4: "FWD"}

// PositionShort maps an element_type to GK/DEF/MID/FWD ("" when unknown).
func PositionShort(elementType int) string { return positionCodes[elementType] }

// ElementTypeFor maps GK/DEF/MID/FWD (any case) back to an element_type.
func ElementTypeFor(code string) (int, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for id, c := range positionCodes {
		if c == code {
			return id, true
		}
	}
	return 0, false
}

// --------------------------------------------------------------------------
// Player: the enriched shape served to clients
// --------------------------------------------------------------------------

const photoBaseURL = "https://resources.premierleague.com/premierleague/photos/players/110x140/p"

// Player is an Element joined with its team and position labels.
type Player struct {
	ID                       int     `json:"id"`
	Code                     int     `json:"code"`
	FirstName                string  `json:"first_name"`
	SecondName               string  `json:"second_name"`
	WebName                  string  `json:"web_name"`
	Team                     int     `json:"team"`
	TeamName                 string  `json:"team_name"`
	TeamShortName            string  `json:"team_short_name"`
	ElementType              int     `json:"element_type"`
	PositionShort            string  `json:"position_short"`
	NowCost                  float64 `json:"now_cost"`
	TotalPoints              int     `json:"total_points"`
	Form                     string  `json:"form"`
	PointsPerGame            string  `json:"points_per_game"`
	SelectedByPercent        string  `json:"selected_by_percent"`
	Status                   string  `json:"status"`
	StatusLabel              string  `json:"status_label"`
	News                     string  `json:"news"`
	NewsAdded                *string `json:"news_added"`
	ChanceOfPlayingNextRound *int    `json:"chance_of_playing_next_round"`
	PhotoURL                 string  `json:"photo_url,omitempty"`
	Minutes                  int     `json:"minutes"`
	GoalsScored              int     `json:"goals_scored"`
	Assists                  int     `json:"assists"`
	CleanSheets              int     `json:"clean_sheets"`
}

var statusLabels = map[string]string{
	"a": "available",
	"d": "doubtful",
	"i": "injured",
	"s": "suspended",
	"u": "unavailable",
	"n": "not eligible",
}

// Players joins every element with its team. Order follows the bootstrap.
func (b *Bootstrap) Players() []Player {
	teams := b.TeamIndex()
	players := make([]Player, 0, len(b.Elements))
	for _, e := range b.Elements {
		t := teams[e.Team]
		p := Player{
			ID:                       e.ID,
			Code:                     e.Code,
			FirstName:                e.FirstName,
			SecondName:               e.SecondName,
			WebName:                  e.WebName,
			Team:                     e.Team,
			TeamName:                 t.Name,
			TeamShortName:            t.ShortName,
			ElementType:              e.ElementType,
			PositionShort:            PositionShort(e.ElementType),
			NowCost:                  float64(e.NowCost) / 10,
			TotalPoints:              e.TotalPoints,
			Form:                     e.Form,
			PointsPerGame:            e.PointsPerGame,
			SelectedByPercent:        e.SelectedByPercent,
			Status:                   e.Status,
			StatusLabel:              statusLabels[e.Status],
			News:                     e.News,
			NewsAdded:                e.NewsAdded,
			ChanceOfPlayingNextRound: e.ChanceOfPlayingNextRound,
			Minutes:                  e.Minutes,
			GoalsScored:              e.GoalsScored,
			Assists:                  e.Assists,
			CleanSheets:              e.CleanSheets,
		}
		if photo := strings.TrimSuffix(e.Photo, ".jpg"); photo != "" {
			p.PhotoURL = photoBaseURL + photo + ".png"
		}
		players = append(players, p)
	}
	return players
}

// Injuries returns players flagged as anything but available, or with a
// reduced chance of playing next round.
func (b *Bootstrap) Injuries() []Player {
	var out []Player
	for _, p := range b.Players() {
		flagged := p.Status != "" && p.Status != "a"
		reduced := p.ChanceOfPlayingNextRound != nil && *p.ChanceOfPlayingNextRound < 100
		if flagged || reduced {
			out = append(out, p)
		}
	}
	if out == nil {
		out = []Player{}
	}
	return out
}

// TeamIndex maps team id to team.
func (b *Bootstrap) TeamIndex() map[int]Team {
	idx := make(map[int]Team, len(b.Teams))
	for _, t := range b.Teams {
		idx[t.ID] = t
	}
	return idx
}

// CurrentEvent picks the gameweek flagged is_current, falling back to the
// latest finished one and then the first. ok is false with no events.
func (b *Bootstrap) CurrentEvent() (Event, bool) {
	if len(b.Events) == 0 {
		return Event{}, false
	}
	for _, e := range b.Events {
		if e.IsCurrent {
			return e, true
		}
	}
	var last *Event
	for i := range b.Events {
		if b.Events[i].Finished {
			last = &b.Events[i]
		}
	}
	if last != nil {
		return *last, true
	}
	return b.Events[0], true
}
