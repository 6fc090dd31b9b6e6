package filter

import (
	"github.com/solatis/fieldfilter/internal/types"
)

/*
 * Condition evaluation.
 *
 * Evaluate resolves the condition's field on the record, then dispatches on
 * (record shape, condition value kind, operator):
 *
 *   record   value      operator            rule
 *   ------   -----      --------            ----
 *   string   string     is, isNot           singleSelect equality
 *   string   string     any other           text, case-insensitive
 *   number   number     numeric ops         exact comparison
 *   number   range      between             amount range
 *   string   dateRange  between             date range
 *   strings  strings    in, notIn           multiSelect membership
 *   bool     bool       any                 equality
 *   anything else                           true (fail-open)
 *
 * Absent or null fields fail the condition before dispatch: absence is
 * never vacuously true. Fail-open only applies to values that exist but
 * have no matching rule, so a builder/evaluator mismatch never over-filters.
 */

// Evaluate reports whether record satisfies cond.
// Pure and deterministic; safe for concurrent use.
func Evaluate(record types.Record, cond types.Condition) bool {
	raw, ok := present(record, cond.Field)
	if !ok {
		return false
	}
	return dispatch(coerceRecordValue(raw), cond.Operator, cond.Value)
}

// dispatch selects the matching rule for the shape pair.
func dispatch(rv recordValue, op types.Operator, target types.FilterValue) bool {
	switch {
	case rv.shape == shapeString && target.Kind == types.KindString:
		if op == types.OpIs || op == types.OpIsNot {
			return matchSelect(op, rv.str, target.Text)
		}
		return matchText(op, rv.str, target.Text)

	case rv.shape == shapeNumber && target.Kind == types.KindNumber:
		return compareNumber(op, rv.num, target.Number)

	case rv.shape == shapeNumber && target.Kind == types.KindRange && op == types.OpBetween:
		return matchAmount(rv.num, target.Range)

	case rv.shape == shapeString && target.Kind == types.KindDateRange && op == types.OpBetween:
		return matchDate(rv.str, target.Dates)

	case rv.shape == shapeStrings && target.Kind == types.KindStrings:
		return matchMulti(op, rv.list, target.List)

	case rv.shape == shapeBool && target.Kind == types.KindBool:
		return rv.b == target.Bool

	default:
		return true
	}
}
