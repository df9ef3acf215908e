package livestats

// Candidate name substrings for each derived metric, most specific first.
var (
	ShotsKeys      = []string{"shots total", "shots"}
	OnTargetKeys   = []string{"shots on goal", "on target"}
	PossessionKeys = []string{"ball possession", "possession"}
	CornerKeys     = []string{"corner", "corners"}
	CardKeys       = []string{"yellow cards", "red cards", "cards"}
)

// Pair holds one metric for both sides.
type Pair struct {
	Home Value `json:"home"`
	Away Value `json:"away"`
}

// ExtractPair runs Extract for both sides with the same candidates.
func ExtractPair(entries []Entry, candidates []string) Pair {
	return Pair{
		Home: Extract(entries, candidates, Home),
		Away: Extract(entries, candidates, Away),
	}
}

// Prefer returns p with each side replaced by the corresponding side of
// summary when that side is known. A nil summary leaves p unchanged.
func (p Pair) Prefer(summary *Pair) Pair {
	if summary == nil {
		return p
	}
	return Pair{
		Home: summary.Home.Or(p.Home),
		Away: summary.Away.Or(p.Away),
	}
}

// Display renders "home - away" with suffix appended to known readings.
func (p Pair) Display(suffix string) string {
	return p.Home.Format(suffix) + " - " + p.Away.Format(suffix)
}

// Summary is the optional pre-aggregated block some feeds attach to a game.
type Summary struct {
	Shots      *Pair `json:"shots,omitempty"`
	OnTarget   *Pair `json:"onTarget,omitempty"`
	Possession *Pair `json:"possession,omitempty"`
}

// Scoreboard is the set of derived display fields for one live game.
type Scoreboard struct {
	Shots      Pair `json:"shots"`
	OnTarget   Pair `json:"onTarget"`
	Possession Pair `json:"possession"`
	Corners    Pair `json:"corners"`
	Cards      Pair `json:"cards"`
}

// BuildScoreboard extracts every metric from entries. For shots, on target
// and possession a known summary reading wins over the extracted one.
func BuildScoreboard(entries []Entry, summary *Summary) Scoreboard {
	var s Summary
	if summary != nil {
		s = *summary
	}
	return Scoreboard{
		Shots:      ExtractPair(entries, ShotsKeys).Prefer(s.Shots),
		OnTarget:   ExtractPair(entries, OnTargetKeys).Prefer(s.OnTarget),
		Possession: ExtractPair(entries, PossessionKeys).Prefer(s.Possession),
		Corners:    ExtractPair(entries, CornerKeys),
		Cards:      ExtractPair(entries, CardKeys),
	}
}

// Lines renders the scoreboard as label → "home - away" text, matching the
// scoreboard strip of the live games view.
func (sb Scoreboard) Lines() map[string]string {
	return map[string]string{
		"Shots":      sb.Shots.Display(""),
		"On Target":  sb.OnTarget.Display(""),
		"Possession": sb.Possession.Display("%"),
		"Corners":    sb.Corners.Display(""),
		"Cards":      sb.Cards.Display(""),
	}
}
