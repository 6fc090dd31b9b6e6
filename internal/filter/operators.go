package filter

import (
	"strings"

	"github.com/solatis/fieldfilter/internal/types"
)

/*
 * Per-shape matching rules.
 *
 * Each function handles one row of the dispatch table in evaluate.go.
 * Text and select comparisons are case-insensitive. Numeric comparisons
 * are exact. An operator a row does not know returns true: the row matched
 * on shape, so the permissive default applies to the operator as well.
 *
 * Range rules:
 *   - amount: unset, empty or non-numeric bounds are ignored; present
 *     bounds are inclusive
 *   - date: start compares at start of day, end at 23:59:59.999 so the
 *     whole end day is included; unparseable bounds are ignored
 *
 * multiSelect notIn is the negation of in: a record fails notIn when ANY
 * listed value is present, which is not the same as ANDing single-value
 * exclusions per element.
 */

// matchText applies a text operator after lowercasing both sides.
func matchText(op types.Operator, value, target string) bool {
	v := strings.ToLower(value)
	t := strings.ToLower(target)
	switch op {
	case types.OpEquals:
		return v == t
	case types.OpContains:
		return strings.Contains(v, t)
	case types.OpDoesNotContain:
		return !strings.Contains(v, t)
	case types.OpStartsWith:
		return strings.HasPrefix(v, t)
	case types.OpEndsWith:
		return strings.HasSuffix(v, t)
	default:
		return true
	}
}

// matchSelect applies is/isNot with the lowercase equality text equals uses.
func matchSelect(op types.Operator, value, target string) bool {
	eq := strings.ToLower(value) == strings.ToLower(target)
	if op == types.OpIsNot {
		return !eq
	}
	return eq
}

// compareNumber applies a numeric operator with exact float comparison.
func compareNumber(op types.Operator, value, target float64) bool {
	switch op {
	case types.OpEquals:
		return value == target
	case types.OpGreaterThan:
		return value > target
	case types.OpLessThan:
		return value < target
	case types.OpGreaterThanOrEqual:
		return value >= target
	case types.OpLessThanOrEqual:
		return value <= target
	default:
		return true
	}
}

// matchAmount checks value against the inclusive bounds that parse.
func matchAmount(value float64, r types.RangeValue) bool {
	if r.Min.IsEmpty() && r.Max.IsEmpty() {
		return true
	}
	if lo, ok := r.Min.Float(); ok && value < lo {
		return false
	}
	if hi, ok := r.Max.Float(); ok && value > hi {
		return false
	}
	return true
}

// matchDate checks a record date string against a calendar date range.
func matchDate(value string, d types.DateRange) bool {
	start, hasStart := parseDate(d.StartDate)
	end, hasEnd := parseDate(d.EndDate)
	if !hasStart && !hasEnd {
		return true
	}

	date, ok := parseDate(value)
	if !ok {
		// nothing to compare against an enforced bound
		return false
	}
	if hasStart && date.Before(startOfDay(start)) {
		return false
	}
	if hasEnd && date.After(endOfDay(end)) {
		return false
	}
	return true
}

// matchMulti applies in/notIn as a case-insensitive intersection test.
func matchMulti(op types.Operator, values, targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	switch op {
	case types.OpIn:
		return intersects(values, targets)
	case types.OpNotIn:
		return !intersects(values, targets)
	default:
		return true
	}
}

// intersects reports whether any target appears in values, ignoring case.
func intersects(values, targets []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[strings.ToLower(v)] = struct{}{}
	}
	for _, t := range targets {
		if _, ok := seen[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}
