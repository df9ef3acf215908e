package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/albapepper/pitchside/internal/provider/fpl"
)

// --------------------------------------------------------------------------
// Pagination
// --------------------------------------------------------------------------

const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 100
)

// Paging is the paging block of a paged response.
type Paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// PlayerPage is the response of GET /api/epl/players.
type PlayerPage struct {
	Response []fpl.Player `json:"response"`
	Results  int          `json:"results"`
	Paging   Paging       `json:"paging"`
	Total    int          `json:"total"`
}

// parsePaging reads page and limit. Unparseable values fall back to the
// defaults; page is at least 1 and limit is clamped to [1, 100].
func parsePaging(q url.Values) (page, limit int) {
	page = intParam(q, "page", defaultPage)
	if page < 1 {
		page = 1
	}
	limit = intParam(q, "limit", defaultLimit)
	switch {
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}
	return page, limit
}

func intParam(q url.Values, key string, fallback int) int {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// paginate slices the filtered players for one page. A page past the end
// is empty but still reports the full total.
func paginate(players []fpl.Player, page, limit int) PlayerPage {
	total := len(players)
	// Compare before multiplying so a huge page cannot overflow.
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := players[start:end]
	if items == nil {
		items = []fpl.Player{}
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return PlayerPage{
		Response: items,
		Results:  len(items),
		Paging:   Paging{Current: page, Total: pages},
		Total:    total,
	}
}

// --------------------------------------------------------------------------
// Filters
// --------------------------------------------------------------------------

// filterPlayers applies the optional search and position filters.
// search matches a lower-cased substring of "first second web" names;
// position matches position_short or, failing that, element_type.
func filterPlayers(players []fpl.Player, search, position string) []fpl.Player {
	search = strings.ToLower(strings.TrimSpace(search))
	position = strings.ToUpper(strings.TrimSpace(position))
	if search == "" && position == "" {
		return players
	}
	wantType, hasType := fpl.ElementTypeFor(position)

	out := make([]fpl.Player, 0, len(players))
	for _, p := range players {
		if search != "" {
			name := strings.ToLower(p.FirstName + " " + p.SecondName + " " + p.WebName)
			if !strings.Contains(name, search) {
				continue
			}
		}
		if position != "" {
			byCode := p.PositionShort != "" && strings.ToUpper(p.PositionShort) == position
			byType := hasType && p.ElementType == wantType
			if !byCode && !byType {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// filterFixtures applies the status filter. Unknown statuses leave the
// list unfiltered.
func filterFixtures(fixtures []fpl.Fixture, status string) []fpl.Fixture {
	var keep func(fpl.Fixture) bool
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "upcoming", "scheduled":
		keep = fpl.Fixture.IsUpcoming
	case "live", "inplay":
		keep = fpl.Fixture.IsLive
	case "finished", "ft":
		keep = func(f fpl.Fixture) bool { return f.Finished }
	default:
		if fixtures == nil {
			return []fpl.Fixture{}
		}
		return fixtures
	}

	out := make([]fpl.Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
