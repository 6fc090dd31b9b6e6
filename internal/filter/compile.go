package filter

import (
	"github.com/solatis/fieldfilter/internal/types"
)

/*
 * Condition compilation and application.
 *
 * Compiles a flat condition list into field groups:
 *   1. Drop conditions whose value is empty (empty string, empty list,
 *      range or date range with both bounds unset, null). Dropped
 *      conditions are treated as not present at all.
 *   2. Partition the rest by field key, in first-seen field order, keeping
 *      the original relative order inside each group.
 *
 * Application semantics: a record is kept iff every group has at least one
 * condition that evaluates true (OR within a field, AND across fields).
 * With no groups left, the input is returned unchanged.
 *
 * Grouping is one pass over an ordered slice plus a key -> index map, so
 * iteration order never depends on map ordering.
 */

// FieldGroup holds the valid conditions that share one field key.
type FieldGroup struct {
	Field      string
	Conditions []types.Condition // original relative order
}

// Match reports whether any condition in the group passes.
func (g FieldGroup) Match(record types.Record) bool {
	for _, cond := range g.Conditions {
		if Evaluate(record, cond) {
			return true
		}
	}
	return false
}

// CompiledFilter is a grouped, validity-filtered condition set.
type CompiledFilter struct {
	Groups  []FieldGroup // first-seen field order
	Dropped int          // conditions discarded by the validity filter
}

// Compile drops invalid conditions and groups the rest by field.
// The input slice and its conditions are not modified.
func Compile(conds []types.Condition) *CompiledFilter {
	compiled := &CompiledFilter{}
	index := make(map[string]int)

	for _, cond := range conds {
		if !cond.IsActive() {
			compiled.Dropped++
			continue
		}
		i, ok := index[cond.Field]
		if !ok {
			i = len(compiled.Groups)
			index[cond.Field] = i
			compiled.Groups = append(compiled.Groups, FieldGroup{Field: cond.Field})
		}
		compiled.Groups[i].Conditions = append(compiled.Groups[i].Conditions, cond)
	}

	return compiled
}

// Empty reports whether no valid conditions survived compilation.
func (cf *CompiledFilter) Empty() bool {
	return cf == nil || len(cf.Groups) == 0
}

// Match reports whether record satisfies every field group.
func (cf *CompiledFilter) Match(record types.Record) bool {
	if cf == nil {
		return true
	}
	for _, group := range cf.Groups {
		if !group.Match(record) {
			return false
		}
	}
	return true
}

// Apply returns the records that match, in input order.
// With no groups the input slice itself is returned; otherwise the result is
// newly allocated and the input is untouched.
func (cf *CompiledFilter) Apply(records []types.Record) []types.Record {
	if cf.Empty() {
		return records
	}
	kept := make([]types.Record, 0, len(records))
	for _, record := range records {
		if cf.Match(record) {
			kept = append(kept, record)
		}
	}
	return kept
}

// ApplyFilters filters records by conditions.
// Equivalent to Compile(conds).Apply(records).
func ApplyFilters(records []types.Record, conds []types.Condition) []types.Record {
	return Compile(conds).Apply(records)
}
