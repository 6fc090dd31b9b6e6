package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

/*
 * FilterValue tagged union.
 *
 * A condition value is exactly one of: plain string, number, boolean,
 * ordered list of strings, amount range {min, max}, or date range
 * {startDate, endDate}. KindNone represents JSON null.
 *
 * JSON shape decides the kind on decode:
 *   - "..."                      -> KindString
 *   - 12.5                       -> KindNumber
 *   - true / false               -> KindBool
 *   - ["a", "b"]                 -> KindStrings
 *   - {"min": .., "max": ..}     -> KindRange
 *   - {"startDate": .., ...}     -> KindDateRange
 *   - null or {}                 -> KindNone
 *
 * Range bounds accept numbers, numeric strings, arbitrary strings and null.
 * Bound keeps the raw text so malformed bounds survive decoding and are
 * ignored later by the evaluator instead of failing the whole request.
 */

// ValueKind tags the active member of a FilterValue.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindStrings
	KindRange
	KindDateRange
)

var kindNames = [...]string{"none", "string", "number", "boolean", "strings", "range", "dateRange"}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Bound is one end of an amount range. Empty means unset.
type Bound string

// Float parses the bound. Returns false for empty or non-numeric text.
func (b Bound) Float() (float64, bool) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsEmpty reports whether the bound is unset or whitespace.
func (b Bound) IsEmpty() bool {
	return strings.TrimSpace(string(b)) == ""
}

// BoundOf formats a float as a Bound.
func BoundOf(f float64) Bound {
	return Bound(strconv.FormatFloat(f, 'f', -1, 64))
}

// UnmarshalJSON accepts null, strings, and raw numbers.
func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bound(s)
		return nil
	}
	// numbers, and anything else, keep their literal text; non-numeric
	// literals are ignored at evaluation time
	*b = Bound(data)
	return nil
}

// MarshalJSON writes numbers as numbers, empty as null, everything else as a string.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return []byte("null"), nil
	}
	if f, ok := b.Float(); ok {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(string(b))
}

// RangeValue is an amount range; either bound may be unset.
type RangeValue struct {
	Min Bound `json:"min"`
	Max Bound `json:"max"`
}

// DateRange is a calendar date range; either end may be unset.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FilterValue holds exactly one shape, selected by Kind.
type FilterValue struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	List   []string
	Range  RangeValue
	Dates  DateRange
}

// TextValue builds a KindString value.
func TextValue(s string) FilterValue { return FilterValue{Kind: KindString, Text: s} }

// NumberValue builds a KindNumber value.
func NumberValue(f float64) FilterValue { return FilterValue{Kind: KindNumber, Number: f} }

// BoolValue builds a KindBool value.
func BoolValue(b bool) FilterValue { return FilterValue{Kind: KindBool, Bool: b} }

// ListValue builds a KindStrings value. The list is never nil.
func ListValue(items ...string) FilterValue {
	list := make([]string, len(items))
	copy(list, items)
	return FilterValue{Kind: KindStrings, List: list}
}

// AmountRange builds a KindRange value.
func AmountRange(lo, hi Bound) FilterValue {
	return FilterValue{Kind: KindRange, Range: RangeValue{Min: lo, Max: hi}}
}

// DateRangeValue builds a KindDateRange value from YYYY-MM-DD strings.
func DateRangeValue(start, end string) FilterValue {
	return FilterValue{Kind: KindDateRange, Dates: DateRange{StartDate: start, EndDate: end}}
}

// IsEmpty applies the validity rules: empty string, empty list, a range with
// both bounds unset, and null are empty. Numbers and booleans never are.
func (v FilterValue) IsEmpty() bool {
	switch v.Kind {
	case KindString:
		return v.Text == ""
	case KindStrings:
		return len(v.List) == 0
	case KindRange:
		return v.Range.Min.IsEmpty() && v.Range.Max.IsEmpty()
	case KindDateRange:
		return strings.TrimSpace(v.Dates.StartDate) == "" && strings.TrimSpace(v.Dates.EndDate) == ""
	case KindNumber, KindBool:
		return false
	default:
		return true
	}
}

// MarshalJSON writes the active member in its natural JSON shape.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindStrings:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindRange:
		return json.Marshal(v.Range)
	case KindDateRange:
		return json.Marshal(v.Dates)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON selects the kind from the JSON shape.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = FilterValue{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		v.Kind = KindString
		return json.Unmarshal(data, &v.Text)
	case 't', 'f':
		v.Kind = KindBool
		return json.Unmarshal(data, &v.Bool)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("list values must be strings: %w", ErrInvalidValue)
		}
		if list == nil {
			list = []string{}
		}
		v.Kind = KindStrings
		v.List = list
		return nil
	case '{':
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return err
		}
		_, hasMin := keys["min"]
		_, hasMax := keys["max"]
		_, hasStart := keys["startDate"]
		_, hasEnd := keys["endDate"]
		switch {
		case hasMin || hasMax:
			v.Kind = KindRange
			return json.Unmarshal(data, &v.Range)
		case hasStart || hasEnd:
			v.Kind = KindDateRange
			return json.Unmarshal(data, &v.Dates)
		case len(keys) == 0:
			return nil
		default:
			return fmt.Errorf("unrecognised object value: %w", ErrInvalidValue)
		}
	default:
		v.Kind = KindNumber
		if err := json.Unmarshal(data, &v.Number); err != nil {
			return fmt.Errorf("%s: %w", string(data), ErrInvalidValue)
		}
		return nil
	}
}
