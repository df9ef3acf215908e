package livestats

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a stat reading that is either a finite number or unknown.
// The zero Value is unknown. It marshals to a JSON number or null.
type Value struct {
	n     float64
	known bool
}

// Unknown is the absent reading.
var Unknown = Value{}

// Known wraps n. Non-finite input yields Unknown.
func Known(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Unknown
	}
	return Value{n: n, known: true}
}

// Get returns the number and whether it is known.
func (v Value) Get() (float64, bool) { return v.n, v.known }

// IsKnown reports whether v carries a number.
func (v Value) IsKnown() bool { return v.known }

// Or returns v when known, otherwise fallback.
func (v Value) Or(fallback Value) Value {
	if v.known {
		return v
	}
	return fallback
}

// String renders the number, or "N/A" when unknown.
func (v Value) String() string {
	if !v.known {
		return "N/A"
	}
	return strconv.FormatFloat(v.n, 'f', -1, 64)
}

// Format renders the number followed by suffix, or "N/A" when unknown.
func (v Value) Format(suffix string) string {
	if !v.known {
		return "N/A"
	}
	return v.String() + suffix
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.known {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.n, 'f', -1, 64)), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Coerce(data)
	return nil
}

// Coerce turns a raw vendor value into a Value.
//
// Numbers pass through. Text has every '%' and surrounding whitespace
// removed and is then parsed as a number. Everything else (null, empty
// text, booleans, objects, lists, unparsable or non-finite text) is Unknown.
func Coerce(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Unknown
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Unknown
		}
		return parseText(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return Unknown
		}
		return Known(f)
	default:
		return Unknown
	}
}

func parseText(s string) Value {
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if s == "" {
		return Unknown
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Unknown
	}
	return Known(f)
}
