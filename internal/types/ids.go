package types

import "github.com/google/uuid"

// NewConditionID generates a UUIDv7 condition identifier.
// Condition IDs are opaque to the engine; time ordering only helps humans
// reading exported condition files.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewConditionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// EnsureConditionIDs fills in missing IDs in place and returns conds.
// Loaders call this; the engine never mutates conditions.
func EnsureConditionIDs(conds []Condition) []Condition {
	for i := range conds {
		if conds[i].ID == "" {
			conds[i].ID = NewConditionID()
		}
	}
	return conds
}
