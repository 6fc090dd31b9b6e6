// Package types provides domain models shared across fieldfilter components.
//
// Zero-dependency design: field, operator, value and condition types use only
// encoding/json so the filter core can be embedded without pulling in the
// transport or storage stacks. ID utilities in ids.go import uuid but are
// isolated for selective inclusion.
//
// Wire formats (structpb, HTTP JSON, YAML files) convert to these types at
// the boundary; nothing in this package knows about them.
package types

import "encoding/json"

// Record is an arbitrary keyed structure. Fields are only ever read through
// the path resolver; the engine has no compile-time knowledge of shape.
type Record = map[string]any

// SortDirection selects ascending or descending order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig is transient per-view state naming the sort key and direction.
// A nil *SortConfig means "leave order untouched".
type SortConfig struct {
	Key       string        `json:"key" yaml:"key"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// Validate rejects directions other than asc/desc.
// An empty direction is accepted and treated as asc.
func (s SortConfig) Validate() error {
	switch s.Direction {
	case "", SortAsc, SortDesc:
		return nil
	default:
		return ErrInvalidSortDirection
	}
}

// Dataset bundles field metadata with the records it describes.
// Version is a content checksum assigned by the store; empty for inline data.
type Dataset struct {
	Name    string            `json:"name" yaml:"name"`
	Fields  []FieldDefinition `json:"fields" yaml:"fields"`
	Records []Record          `json:"records" yaml:"records"`
	Version string            `json:"version,omitempty" yaml:"version,omitempty"`
}

// Resource limits enforced at the service boundary.
const (
	// MaxPathDepth bounds dot-path length accepted from callers.
	// 16 levels covers any realistic nesting of record attributes.
	MaxPathDepth = 16

	// MaxConditions caps the condition list of a single query.
	// 256 rows is far beyond what a human builds in a filter form.
	MaxConditions = 256

	// MaxMultiSelectValues caps in/notIn lists to bound membership cost.
	MaxMultiSelectValues = 256
)

// CloneRecords returns a shallow copy of records.
// The slice is new; the records themselves are shared and must not be mutated.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// DecodeRecords parses a JSON array of objects into records.
// Numbers decode as float64, matching what the evaluator expects.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
