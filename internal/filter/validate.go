package filter

import (
	"errors"
	"fmt"

	"github.com/solatis/fieldfilter/internal/types"
)

/*
 * Builder-side condition validation.
 *
 * ApplyFilters never calls these: the engine trusts the builder and fails
 * open on mismatches. Validation exists for callers that want to reject bad
 * rows up front (CLI validate command, strict service mode).
 *
 * Checks, in order:
 *   1. field key exists in the FieldSet
 *   2. operator is legal for the field type
 *   3. a non-empty value has the shape the (type, operator) pair requires
 *   4. select values are declared options; in/notIn lists are bounded
 *
 * Empty values pass: they are inactive rows, dropped before evaluation.
 */

// ValidateCondition checks one condition against the field catalogue.
func ValidateCondition(fields *types.FieldSet, cond types.Condition) error {
	def, ok := fields.Lookup(cond.Field)
	if !ok {
		return fmt.Errorf("condition %s: field %q: %w", cond.ID, cond.Field, types.ErrUnknownField)
	}

	if !types.IsLegal(def.Type, cond.Operator) {
		return fmt.Errorf("condition %s: operator %q on %s field %q: %w",
			cond.ID, cond.Operator, def.Type, def.Key, types.ErrInvalidOperator)
	}

	if cond.Value.IsEmpty() {
		return nil
	}

	want := types.ExpectedKind(def.Type, cond.Operator)
	if cond.Value.Kind != want {
		return fmt.Errorf("condition %s: %s value for %s %s, want %s: %w",
			cond.ID, cond.Value.Kind, def.Type, cond.Operator, want, types.ErrInvalidValue)
	}

	switch def.Type {
	case types.FieldSingleSelect:
		if !def.HasOption(cond.Value.Text) {
			return fmt.Errorf("condition %s: %q on field %q: %w", cond.ID, cond.Value.Text, def.Key, types.ErrUnknownOption)
		}
	case types.FieldMultiSelect:
		if len(cond.Value.List) > types.MaxMultiSelectValues {
			return fmt.Errorf("condition %s: %d values: %w", cond.ID, len(cond.Value.List), types.ErrTooManyValues)
		}
		for _, v := range cond.Value.List {
			if !def.HasOption(v) {
				return fmt.Errorf("condition %s: %q on field %q: %w", cond.ID, v, def.Key, types.ErrUnknownOption)
			}
		}
	}

	return nil
}

// ValidateConditions checks every condition and joins all failures.
// Returns nil when all conditions are acceptable.
func ValidateConditions(fields *types.FieldSet, conds []types.Condition) error {
	if len(conds) > types.MaxConditions {
		return fmt.Errorf("%d conditions: %w", len(conds), types.ErrTooManyConditions)
	}
	var errs []error
	for _, cond := range conds {
		if err := ValidateCondition(fields, cond); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
