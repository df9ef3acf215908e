package livestats

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Side selects the home or away half of a stat entry.
type Side int

const (
	Home Side = iota
	Away
)

// ParseSide accepts "home", "away", "h" and "a" in any case.
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "h":
		return Home, true
	case "away", "a":
		return Away, true
	}
	return Home, false
}

// Key is the vendor key holding this side's values.
func (s Side) Key() string {
	if s == Away {
		return "a"
	}
	return "h"
}

func (s Side) String() string {
	if s == Away {
		return "away"
	}
	return "home"
}

// Shape names the form a side key takes inside a vendor stat entry.
type Shape int

const (
	// ShapeAbsent: the side key is missing or null.
	ShapeAbsent Shape = iota
	// ShapeList: a list; the reading is the first element's "value".
	ShapeList
	// ShapeObject: an object; the reading is its "value".
	ShapeObject
	// ShapeUnsupported: a scalar or anything else. Never yields a reading.
	ShapeUnsupported
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeObject:
		return "object"
	case ShapeUnsupported:
		return "unsupported"
	default:
		return "absent"
	}
}

// SideValue is one decoded side of an entry. Raw is the value field found
// for the shape, nil when the shape carries none.
type SideValue struct {
	Shape Shape
	Raw   json.RawMessage
}

// Value resolves the reading for this side.
func (sv SideValue) Value() Value {
	switch sv.Shape {
	case ShapeList, ShapeObject:
		return Coerce(sv.Raw)
	default:
		return Unknown
	}
}

// Entry is a vendor stat record reduced to what extraction needs.
type Entry struct {
	// Name is the case-folded first non-empty of identifier, name, stat.
	Name string
	Home SideValue
	Away SideValue
}

// Side returns the decoded half for s.
func (e Entry) Side(s Side) SideValue {
	if s == Away {
		return e.Away
	}
	return e.Home
}

var nameKeys = []string{"identifier", "name", "stat"}

// DecodeEntry decodes a single vendor stat record. It never fails: input
// that is not an object yields an Entry with no name and absent sides.
func DecodeEntry(raw json.RawMessage) Entry {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Entry{}
	}

	var e Entry
	for _, k := range nameKeys {
		if n := textOf(fields[k]); n != "" {
			e.Name = strings.ToLower(n)
			break
		}
	}
	e.Home = decodeSide(fields[Home.Key()])
	e.Away = decodeSide(fields[Away.Key()])
	return e
}

// DecodeEntries decodes every record of a JSON list. A payload that is not
// a list yields nil.
func DecodeEntries(raw json.RawMessage) []Entry {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return DecodeAll(items)
}

// DecodeAll decodes already-split records.
func DecodeAll(items []json.RawMessage) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, DecodeEntry(item))
	}
	return entries
}

func decodeSide(raw json.RawMessage) SideValue {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return SideValue{Shape: ShapeAbsent}
	}

	switch raw[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return SideValue{Shape: ShapeUnsupported}
		}
		sv := SideValue{Shape: ShapeList}
		if len(list) > 0 {
			sv.Raw = valueField(list[0])
		}
		return sv
	case '{':
		return SideValue{Shape: ShapeObject, Raw: valueField(raw)}
	default:
		return SideValue{Shape: ShapeUnsupported}
	}
}

func valueField(raw json.RawMessage) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj["value"]
}

// textOf returns a string or number field as text; anything else is "".
func textOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}
