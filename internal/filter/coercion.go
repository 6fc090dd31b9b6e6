package filter

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

/*
 * Shape classification for record values.
 *
 * The evaluator is shape-driven, not declaration-driven: it looks at what
 * the record actually holds and what the condition value actually is, so a
 * builder that pairs the wrong value with a field degrades to fail-open
 * instead of crashing.
 *
 * Record shapes:
 *   - shapeString:  string
 *   - shapeNumber:  any Go integer or float type, json.Number
 *   - shapeBool:    bool
 *   - shapeStrings: []string, or []any whose elements are all strings
 *   - shapeOther:   anything else (maps, mixed lists, structs)
 *
 * Numbers normalise to float64 so comparisons are exact float comparisons
 * with no epsilon, which is what JSON decoding produces anyway.
 */

type valueShape int

const (
	shapeOther valueShape = iota
	shapeString
	shapeNumber
	shapeBool
	shapeStrings
)

// recordValue is a resolved record value normalised for dispatch.
type recordValue struct {
	shape valueShape
	str   string
	num   float64
	b     bool
	list  []string
}

// coerceRecordValue classifies v. Never fails; unknown shapes become shapeOther.
func coerceRecordValue(v any) recordValue {
	switch x := v.(type) {
	case string:
		return recordValue{shape: shapeString, str: x}
	case bool:
		return recordValue{shape: shapeBool, b: x}
	case []string:
		return recordValue{shape: shapeStrings, list: x}
	case []any:
		list := make([]string, 0, len(x))
		for _, elem := range x {
			s, ok := elem.(string)
			if !ok {
				return recordValue{shape: shapeOther}
			}
			list = append(list, s)
		}
		return recordValue{shape: shapeStrings, list: list}
	}
	if f, ok := toFloat64(v); ok {
		return recordValue{shape: shapeNumber, num: f}
	}
	return recordValue{shape: shapeOther}
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64 from JSON decoding, Go integer types from hand-built
// records and SQL scans, and json.Number from UseNumber decoders.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// dateLayouts are tried in order when parsing record and bound dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate parses s as a calendar date or timestamp.
// Date-only values are midnight UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// startOfDay returns midnight of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns 23:59:59.999 of t's calendar day in t's location.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
