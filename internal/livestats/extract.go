// Package livestats pulls named match statistics out of loosely-shaped
// vendor stat lists and derives the display fields of a live scoreboard.
//
// Everything here is pure: no I/O, no shared state. Missing or malformed
// data yields Unknown, never zero.
package livestats

import "strings"

// Extract returns the reading for side from the first entry whose name
// contains any of candidates. Entries are tried in list order and the first
// match is final: if its value cannot be resolved the result is Unknown and
// later entries are not consulted.
func Extract(entries []Entry, candidates []string, side Side) Value {
	for _, e := range entries {
		if !matches(e.Name, candidates) {
			continue
		}
		return e.Side(side).Value()
	}
	return Unknown
}

func matches(name string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(name, c) {
			return true
		}
	}
	return false
}
