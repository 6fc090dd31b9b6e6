package types

// Condition is one user-specified filter row.
// Created by the caller, mutated in place by the caller when the row is
// edited, and only ever read by the engine.
type Condition struct {
	ID       string      `json:"id"`
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    FilterValue `json:"value"`
}

// NewCondition builds a row for def with its default operator and an
// inactive default value.
func NewCondition(def FieldDefinition) Condition {
	return Condition{
		ID:       NewConditionID(),
		Field:    def.Key,
		Operator: DefaultOperator(def.Type),
		Value:    DefaultValue(def.Type),
	}
}

// Retarget points c at a different field, resetting operator and value to
// that field's defaults. The ID is kept.
func (c Condition) Retarget(def FieldDefinition) Condition {
	c.Field = def.Key
	c.Operator = DefaultOperator(def.Type)
	c.Value = DefaultValue(def.Type)
	return c
}

// IsActive reports whether the condition survives the validity filter.
func (c Condition) IsActive() bool {
	return !c.Value.IsEmpty()
}
