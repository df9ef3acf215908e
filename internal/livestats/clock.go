package livestats

import "fmt"

// ClockLabel formats the match clock the way the live scoreboard shows it.
//
// 0 is "Kick Off", 1 to 90 render as "<n>'" and stoppage time past 90
// renders as "<n>' +<n-90>'". A half-time check exists in the scoreboard's
// ordering after the first-half branch, so 45 renders as "45'" rather than
// "HT"; ClockLabelHalfTime is the variant that reaches it.
func ClockLabel(minutes int) string {
	switch {
	case minutes == 0:
		return "Kick Off"
	case minutes > 90:
		return fmt.Sprintf("%d' +%d'", minutes, minutes-90)
	default:
		return fmt.Sprintf("%d'", minutes)
	}
}

// ClockLabelHalfTime is ClockLabel with exactly 45 rendered as "HT".
func ClockLabelHalfTime(minutes int) string {
	if minutes == 45 {
		return "HT"
	}
	return ClockLabel(minutes)
}
