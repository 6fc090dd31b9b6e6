package filter

import (
	"fmt"
	"sort"

	"github.com/solatis/fieldfilter/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

/*
 * Record ordering.
 *
 * Compares two records by the value at a field key:
 *   - absent or null sorts last in BOTH directions; two absent values are
 *     equal so they keep input order
 *   - strings: locale-aware collation
 *   - numbers: numeric order
 *   - booleans: true before false when ascending
 *   - mixed or other shapes: collation of the fmt.Sprint renderings
 *
 * Direction desc negates the comparison of present values only, which is
 * why absence is handled before the direction is applied.
 *
 * The sort is stable and works on a copy; the caller's slice is untouched.
 * A collate.Collator is not safe for concurrent use, so one is built per
 * Sort call rather than shared.
 */

// Sorter orders records using collation rules for a language.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter collating strings for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// Tag returns the collation language.
func (s *Sorter) Tag() language.Tag {
	return s.tag
}

// Sort returns a stably sorted copy of records. A nil cfg returns records
// unchanged.
func (s *Sorter) Sort(records []types.Record, cfg *types.SortConfig) []types.Record {
	if cfg == nil {
		return records
	}

	col := collate.New(s.tag)
	path := ParsePath(cfg.Key)
	desc := cfg.Direction == types.SortDesc

	out := types.CloneRecords(records)
	sort.SliceStable(out, func(i, j int) bool {
		return compareAt(col, out[i], out[j], path, desc) < 0
	})
	return out
}

// compareAt compares two records at path, applying absent-last and direction.
func compareAt(col *collate.Collator, a, b types.Record, path []string, desc bool) int {
	va, okA := ResolveSegments(a, path)
	vb, okB := ResolveSegments(b, path)
	okA = okA && va != nil
	okB = okB && vb != nil

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}

	c := compareValues(col, va, vb)
	if desc {
		return -c
	}
	return c
}

// compareValues is a three-way comparison of two present values.
func compareValues(col *collate.Collator, a, b any) int {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return col.CompareString(sa, sb)
		}
	}
	if na, ok := toFloat64(a); ok {
		if nb, ok := toFloat64(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case ba:
				return -1
			default:
				return 1
			}
		}
	}
	return col.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}

// Compare is the exported three-way comparison for two present values,
// collating strings for tag.
func Compare(tag language.Tag, a, b any) int {
	return compareValues(collate.New(tag), a, b)
}

var defaultSorter = NewSorter(language.English)

// SortRecords sorts with English collation. A nil cfg returns records
// unchanged.
func SortRecords(records []types.Record, cfg *types.SortConfig) []types.Record {
	return defaultSorter.Sort(records, cfg)
}
