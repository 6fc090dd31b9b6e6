package filter

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/solatis/fieldfilter/internal/types"
)

func TestCompile_ValidityFilter(t *testing.T) {
	tests := []struct {
		name      string
		value     types.FilterValue
		wantValid bool
	}{
		{name: "empty string", value: types.TextValue(""), wantValid: false},
		{name: "whitespace string is valid", value: types.TextValue(" "), wantValid: true},
		{name: "non-empty string", value: types.TextValue("x"), wantValid: true},
		{name: "empty list", value: types.ListValue(), wantValid: false},
		{name: "non-empty list", value: types.ListValue("a"), wantValid: true},
		{name: "range both unset", value: types.AmountRange("", ""), wantValid: false},
		{name: "range min only", value: types.AmountRange("1", ""), wantValid: true},
		{name: "range malformed min is still set", value: types.AmountRange("abc", ""), wantValid: true},
		{name: "date range both unset", value: types.DateRangeValue("", ""), wantValid: false},
		{name: "date range end only", value: types.DateRangeValue("", "2024-01-01"), wantValid: true},
		{name: "zero number", value: types.NumberValue(0), wantValid: true},
		{name: "false boolean", value: types.BoolValue(false), wantValid: true},
		{name: "null", value: types.FilterValue{}, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled := Compile([]types.Condition{cond("f", types.OpEquals, tt.value)})
			gotValid := len(compiled.Groups) == 1
			if gotValid != tt.wantValid {
				t.Errorf("valid = %v, want %v", gotValid, tt.wantValid)
			}
			wantDropped := 0
			if !tt.wantValid {
				wantDropped = 1
			}
			if compiled.Dropped != wantDropped {
				t.Errorf("Dropped = %d, want %d", compiled.Dropped, wantDropped)
			}
		})
	}
}

func TestCompile_GroupingOrder(t *testing.T) {
	conds := []types.Condition{
		{ID: "1", Field: "b", Operator: types.OpEquals, Value: types.TextValue("b1")},
		{ID: "2", Field: "a", Operator: types.OpEquals, Value: types.TextValue("a1")},
		{ID: "3", Field: "b", Operator: types.OpEquals, Value: types.TextValue("")},
		{ID: "4", Field: "c", Operator: types.OpEquals, Value: types.TextValue("")},
		{ID: "5", Field: "b", Operator: types.OpEquals, Value: types.TextValue("b2")},
		{ID: "6", Field: "a", Operator: types.OpEquals, Value: types.TextValue("a2")},
	}

	compiled := Compile(conds)

	if len(compiled.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2 (field c has no valid conditions)", len(compiled.Groups))
	}
	if compiled.Groups[0].Field != "b" || compiled.Groups[1].Field != "a" {
		t.Errorf("group order = [%s %s], want [b a]", compiled.Groups[0].Field, compiled.Groups[1].Field)
	}

	var ids []string
	for _, c := range compiled.Groups[0].Conditions {
		ids = append(ids, c.ID)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "5" {
		t.Errorf("group b ids = %v, want [1 5]", ids)
	}
	if compiled.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", compiled.Dropped)
	}
}

func TestApplyFilters_AndAcrossOrWithin(t *testing.T) {
	records := []types.Record{
		{"age": float64(20), "dept": "x"},
		{"age": float64(40), "dept": "y"},
		{"age": float64(5), "dept": "x"},
		{"age": float64(50), "dept": "x"},
	}
	conds := []types.Condition{
		{ID: "1", Field: "age", Operator: types.OpGreaterThan, Value: types.NumberValue(30)},
		{ID: "2", Field: "age", Operator: types.OpLessThan, Value: types.NumberValue(10)},
		{ID: "3", Field: "dept", Operator: types.OpEquals, Value: types.TextValue("y")},
	}

	got := ApplyFilters(records, conds)

	if len(got) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(got))
	}
	if got[0]["age"] != float64(40) {
		t.Errorf("result = %v, want the age 40 record", got[0])
	}

	t.Run("or within field alone", func(t *testing.T) {
		got := ApplyFilters(records, conds[:2])
		if len(got) != 3 {
			t.Fatalf("len(result) = %d, want 3", len(got))
		}
		wantAges := []float64{40, 5, 50}
		for i, r := range got {
			if r["age"] != wantAges[i] {
				t.Errorf("result[%d].age = %v, want %v", i, r["age"], wantAges[i])
			}
		}
	})
}

func TestApplyFilters_Identity(t *testing.T) {
	records := []types.Record{{"a": "1"}, {"a": "2"}}

	t.Run("no conditions", func(t *testing.T) {
		got := ApplyFilters(records, nil)
		if len(got) != 2 || &got[0] != &records[0] {
			t.Errorf("ApplyFilters(R, nil) did not return R unchanged")
		}
	})

	t.Run("all conditions invalid", func(t *testing.T) {
		conds := []types.Condition{
			cond("a", types.OpEquals, types.TextValue("")),
			cond("a", types.OpIn, types.ListValue()),
			cond("a", types.OpBetween, types.AmountRange("", "")),
		}
		got := ApplyFilters(records, conds)
		if len(got) != 2 || &got[0] != &records[0] {
			t.Errorf("ApplyFilters(R, invalid) did not return R unchanged")
		}
	})

	t.Run("empty records", func(t *testing.T) {
		got := ApplyFilters(nil, []types.Condition{cond("a", types.OpEquals, types.TextValue("1"))})
		if len(got) != 0 {
			t.Errorf("len(result) = %d, want 0", len(got))
		}
	})
}

func TestApplyFilters_AbsentFieldExcludes(t *testing.T) {
	records := []types.Record{
		{"name": "a", "skills": []any{"go"}},
		{"name": "b"},
	}
	got := ApplyFilters(records, []types.Condition{cond("skills", types.OpNotIn, types.ListValue("java"))})
	if len(got) != 1 || got[0]["name"] != "a" {
		t.Errorf("result = %v, want only record a", got)
	}
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	records := []types.Record{{"n": float64(1)}, {"n": float64(2)}, {"n": float64(3)}}
	conds := []types.Condition{cond("n", types.OpGreaterThan, types.NumberValue(1))}

	got := ApplyFilters(records, conds)

	if len(records) != 3 || records[0]["n"] != float64(1) {
		t.Errorf("input mutated: %v", records)
	}
	if len(got) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(got))
	}
	got[0] = types.Record{"n": float64(99)}
	if records[1]["n"] != float64(2) {
		t.Error("result shares backing array with input")
	}
}

// numberedRecords builds records whose "n" field is 0..count-1 and whose
// "tag" alternates between "even" and "odd".
func numberedRecords(count int) []types.Record {
	records := make([]types.Record, count)
	for i := range records {
		tag := "even"
		if i%2 == 1 {
			tag = "odd"
		}
		records[i] = types.Record{"n": float64(i), "tag": tag}
	}
	return records
}

// isSubsequence reports whether sub appears in full in order, by identity of n.
func isSubsequence(sub, full []types.Record) bool {
	j := 0
	for _, r := range sub {
		for j < len(full) && full[j]["n"] != r["n"] {
			j++
		}
		if j == len(full) {
			return false
		}
		j++
	}
	return true
}

// Property-based test: output is an order-preserving subsequence
func TestApplyFilters_PropertySubsequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("result is a subsequence of the input", prop.ForAll(
		func(count int, threshold float64, tag string, useTag bool) bool {
			records := numberedRecords(count)
			conds := []types.Condition{cond("n", types.OpGreaterThanOrEqual, types.NumberValue(threshold))}
			if useTag {
				conds = append(conds, cond("tag", types.OpIs, types.TextValue(tag)))
			}
			got := ApplyFilters(records, conds)
			return len(got) <= len(records) && isSubsequence(got, records)
		},
		gen.IntRange(0, 50),
		gen.Float64Range(-5, 55),
		gen.OneConstOf("even", "odd", "other"),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property-based test: invalid-only condition lists are the identity
func TestApplyFilters_PropertyIdentity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("all-invalid conditions return the input", prop.ForAll(
		func(count int, invalid int) bool {
			records := numberedRecords(count)
			conds := make([]types.Condition, invalid)
			for i := range conds {
				conds[i] = cond("tag", types.OpEquals, types.TextValue(""))
			}
			got := ApplyFilters(records, conds)
			if len(got) != len(records) {
				return false
			}
			for i := range got {
				if got[i]["n"] != records[i]["n"] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 30),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

// Property-based test: repeated application is reproducible
func TestApplyFilters_PropertyIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("filtering twice equals filtering once", prop.ForAll(
		func(count int, threshold float64) bool {
			records := numberedRecords(count)
			conds := []types.Condition{cond("n", types.OpLessThan, types.NumberValue(threshold))}
			once := ApplyFilters(records, conds)
			twice := ApplyFilters(once, conds)
			again := ApplyFilters(records, conds)
			if len(once) != len(twice) || len(once) != len(again) {
				return false
			}
			for i := range once {
				if once[i]["n"] != twice[i]["n"] || once[i]["n"] != again[i]["n"] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.Float64Range(-5, 45),
	))

	properties.TestingRun(t)
}
