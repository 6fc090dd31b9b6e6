package types

/*
 * Operator catalogue.
 *
 * Each FieldType owns a fixed, ordered set of legal operators. The first
 * entry is the default a builder picks when a row is added or its field
 * changes. No operator is legal for more field types than listed here.
 *
 * The evaluator never consults this table: it dispatches on runtime value
 * shapes and fails open on anything it does not recognise. The table is for
 * builders and for ValidateCondition.
 */

// Operator is the comparison tag of a condition.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpContains           Operator = "contains"
	OpStartsWith         Operator = "startsWith"
	OpEndsWith           Operator = "endsWith"
	OpDoesNotContain     Operator = "doesNotContain"
	OpGreaterThan        Operator = "greaterThan"
	OpLessThan           Operator = "lessThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpBetween            Operator = "between"
	OpIs                 Operator = "is"
	OpIsNot              Operator = "isNot"
	OpIn                 Operator = "in"
	OpNotIn              Operator = "notIn"
)

var legalOperators = map[FieldType][]Operator{
	FieldText:         {OpEquals, OpContains, OpStartsWith, OpEndsWith, OpDoesNotContain},
	FieldNumber:       {OpEquals, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual},
	FieldDate:         {OpBetween},
	FieldAmount:       {OpBetween},
	FieldSingleSelect: {OpIs, OpIsNot},
	FieldMultiSelect:  {OpIn, OpNotIn},
	FieldBoolean:      {OpIs},
}

// LegalOperators returns the operators allowed for t, in builder order.
// Returns nil for unknown types.
func LegalOperators(t FieldType) []Operator {
	ops := legalOperators[t]
	if ops == nil {
		return nil
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// IsLegal reports whether op belongs to t's legal set.
func IsLegal(t FieldType, op Operator) bool {
	for _, candidate := range legalOperators[t] {
		if candidate == op {
			return true
		}
	}
	return false
}

// DefaultOperator returns the first legal operator for t, or "" if t is unknown.
func DefaultOperator(t FieldType) Operator {
	ops := legalOperators[t]
	if len(ops) == 0 {
		return ""
	}
	return ops[0]
}

// DefaultValue returns the inactive starting value for a new condition row.
// Every default is empty under the validity rules, so a freshly added row
// never constrains the result until the caller fills it in.
func DefaultValue(t FieldType) FilterValue {
	switch t {
	case FieldText, FieldSingleSelect:
		return TextValue("")
	case FieldMultiSelect:
		return ListValue()
	case FieldAmount:
		return AmountRange("", "")
	case FieldDate:
		return DateRangeValue("", "")
	default:
		// number and boolean have no empty literal; null keeps them inactive
		return FilterValue{}
	}
}

// ExpectedKind returns the value shape a (type, operator) pair requires.
// Returns KindNone when op is not legal for t.
func ExpectedKind(t FieldType, op Operator) ValueKind {
	if !IsLegal(t, op) {
		return KindNone
	}
	switch t {
	case FieldText, FieldSingleSelect:
		return KindString
	case FieldNumber:
		return KindNumber
	case FieldDate:
		return KindDateRange
	case FieldAmount:
		return KindRange
	case FieldMultiSelect:
		return KindStrings
	case FieldBoolean:
		return KindBool
	default:
		return KindNone
	}
}
