package filter

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/fieldfilter/internal/types"
	"golang.org/x/text/language"
)

func column(records []types.Record, key string) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r[key]
	}
	return out
}

func equalColumns(t *testing.T, got, want []any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortRecords_NilConfigIsNoop(t *testing.T) {
	records := []types.Record{{"k": float64(2)}, {"k": float64(1)}}
	got := SortRecords(records, nil)
	if len(got) != 2 || &got[0] != &records[0] {
		t.Error("SortRecords(R, nil) did not return R unchanged")
	}
}

func TestSortRecords_Numbers(t *testing.T) {
	records := []types.Record{{"k": float64(3)}, {"k": float64(-1)}, {"k": 10}, {"k": float64(2.5)}}

	asc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortAsc})
	equalColumns(t, column(asc, "k"), []any{float64(-1), float64(2.5), float64(3), 10})

	desc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortDesc})
	equalColumns(t, column(desc, "k"), []any{10, float64(3), float64(2.5), float64(-1)})

	// input untouched
	equalColumns(t, column(records, "k"), []any{float64(3), float64(-1), 10, float64(2.5)})
}

func TestSortRecords_Strings(t *testing.T) {
	records := []types.Record{{"k": "banana"}, {"k": "Apple"}, {"k": "cherry"}, {"k": "apple"}}

	got := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortAsc})
	keys := column(got, "k")

	// collation is case-insensitive at the primary level: both apples lead
	first, second := keys[0].(string), keys[1].(string)
	if !(first == "apple" || first == "Apple") || !(second == "apple" || second == "Apple") {
		t.Fatalf("order = %v, want apples first", keys)
	}
	if keys[2] != "banana" || keys[3] != "cherry" {
		t.Errorf("order = %v, want banana then cherry after apples", keys)
	}
}

func TestSortRecords_LocaleAware(t *testing.T) {
	records := []types.Record{{"k": "zebra"}, {"k": "Äpfel"}, {"k": "apple"}}

	got := SortRecords(records, &types.SortConfig{Key: "k"})
	keys := column(got, "k")

	// byte order would put "Äpfel" after "zebra"
	if keys[2] != "zebra" {
		t.Errorf("order = %v, want zebra last", keys)
	}
}

func TestSortRecords_Booleans(t *testing.T) {
	records := []types.Record{{"k": false}, {"k": true}, {"k": false}, {"k": true}}

	asc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortAsc})
	equalColumns(t, column(asc, "k"), []any{true, true, false, false})

	desc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortDesc})
	equalColumns(t, column(desc, "k"), []any{false, false, true, true})
}

func TestSortRecords_Stable(t *testing.T) {
	records := []types.Record{
		{"k": float64(1), "i": 0},
		{"k": float64(1), "i": 1},
		{"k": float64(2), "i": 2},
	}

	asc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortAsc})
	equalColumns(t, column(asc, "i"), []any{0, 1, 2})

	desc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortDesc})
	equalColumns(t, column(desc, "i"), []any{2, 0, 1})
}

func TestSortRecords_AbsentLast(t *testing.T) {
	records := []types.Record{
		{"i": 0},
		{"k": float64(5), "i": 1},
		{"k": nil, "i": 2},
		{"k": float64(1), "i": 3},
		{"i": 4},
	}

	asc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortAsc})
	equalColumns(t, column(asc, "i"), []any{3, 1, 0, 2, 4})

	desc := SortRecords(records, &types.SortConfig{Key: "k", Direction: types.SortDesc})
	equalColumns(t, column(desc, "i"), []any{1, 3, 0, 2, 4})
}

func TestSortRecords_NestedKey(t *testing.T) {
	records := []types.Record{
		{"addr": map[string]any{"city": "Porto"}, "i": 0},
		{"addr": map[string]any{"city": "Lisbon"}, "i": 1},
		{"addr": "unknown", "i": 2},
	}

	got := SortRecords(records, &types.SortConfig{Key: "addr.city", Direction: types.SortAsc})
	equalColumns(t, column(got, "i"), []any{1, 0, 2})
}

func TestCompare_Fallback(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		sign int
	}{
		{name: "strings", a: "a", b: "b", sign: -1},
		{name: "numbers", a: float64(2), b: 1, sign: 1},
		{name: "equal numbers", a: 3, b: float64(3), sign: 0},
		{name: "true before false", a: true, b: false, sign: -1},
		{name: "number vs string uses rendering", a: float64(10), b: "9", sign: -1},
		{name: "bool vs string uses rendering", a: true, b: "abc", sign: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(language.English, tt.a, tt.b)
			if sign(got) != tt.sign {
				t.Errorf("Compare(%v, %v) = %d, want sign %d", tt.a, tt.b, got, tt.sign)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Property-based test: sorting is a permutation and orders present keys
func TestSortRecords_PropertyOrdered(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("ascending sort orders numbers with absent last", prop.ForAll(
		func(values []int, desc bool) bool {
			records := make([]types.Record, len(values))
			for i, v := range values {
				if v%7 == 0 {
					records[i] = types.Record{"i": i}
				} else {
					records[i] = types.Record{"k": float64(v), "i": i}
				}
			}
			dir := types.SortAsc
			if desc {
				dir = types.SortDesc
			}
			got := SortRecords(records, &types.SortConfig{Key: "k", Direction: dir})
			if len(got) != len(records) {
				return false
			}

			seenAbsent := false
			for i, r := range got {
				k, ok := r["k"]
				if !ok {
					seenAbsent = true
					continue
				}
				if seenAbsent {
					return false
				}
				if i == 0 {
					continue
				}
				prev, ok := got[i-1]["k"]
				if !ok {
					continue
				}
				if !desc && prev.(float64) > k.(float64) {
					return false
				}
				if desc && prev.(float64) < k.(float64) {
					return false
				}
				// stability among equal keys
				if prev.(float64) == k.(float64) && got[i-1]["i"].(int) > r["i"].(int) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-20, 20)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
