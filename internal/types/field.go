package types

import (
	"fmt"
	"strings"
)

// FieldType declares how a field's values are matched and which operators apply.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldNumber       FieldType = "number"
	FieldDate         FieldType = "date"
	FieldAmount       FieldType = "amount"
	FieldSingleSelect FieldType = "singleSelect"
	FieldMultiSelect  FieldType = "multiSelect"
	FieldBoolean      FieldType = "boolean"
)

// Valid reports whether t is one of the seven declared field types.
func (t FieldType) Valid() bool {
	_, ok := legalOperators[t]
	return ok
}

// IsSelect reports whether t requires an option list.
func (t FieldType) IsSelect() bool {
	return t == FieldSingleSelect || t == FieldMultiSelect
}

// FieldOption is one selectable value of a select field.
type FieldOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldDefinition is caller-supplied metadata for one filterable attribute.
// Key is a dot-path into the record. Immutable once supplied.
type FieldDefinition struct {
	Key     string        `json:"key" yaml:"key"`
	Label   string        `json:"label" yaml:"label"`
	Type    FieldType     `json:"type" yaml:"type"`
	Options []FieldOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// Validate checks key depth, type, and option presence for select types.
func (f FieldDefinition) Validate() error {
	if strings.TrimSpace(f.Key) == "" {
		return fmt.Errorf("field key is empty: %w", ErrUnknownField)
	}
	if strings.Count(f.Key, ".")+1 > MaxPathDepth {
		return fmt.Errorf("field %q: %w", f.Key, ErrPathTooDeep)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("field %q type %q: %w", f.Key, f.Type, ErrInvalidFieldType)
	}
	if f.Type.IsSelect() && len(f.Options) == 0 {
		return fmt.Errorf("field %q: %w", f.Key, ErrMissingOptions)
	}
	return nil
}

// HasOption reports whether v matches a declared option value.
// Case-insensitive, mirroring select matching in the evaluator.
func (f FieldDefinition) HasOption(v string) bool {
	for _, opt := range f.Options {
		if strings.EqualFold(opt.Value, v) {
			return true
		}
	}
	return false
}

// FieldSet is an ordered, key-indexed collection of field definitions.
type FieldSet struct {
	fields []FieldDefinition
	index  map[string]int
}

// NewFieldSet validates each definition and rejects duplicate keys.
// Declaration order is preserved for listing.
func NewFieldSet(defs []FieldDefinition) (*FieldSet, error) {
	fs := &FieldSet{
		fields: make([]FieldDefinition, 0, len(defs)),
		index:  make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := fs.index[def.Key]; exists {
			return nil, fmt.Errorf("field %q: %w", def.Key, ErrDuplicateField)
		}
		fs.index[def.Key] = len(fs.fields)
		fs.fields = append(fs.fields, def)
	}
	return fs, nil
}

// Lookup returns the definition for key.
func (fs *FieldSet) Lookup(key string) (FieldDefinition, bool) {
	if fs == nil {
		return FieldDefinition{}, false
	}
	i, ok := fs.index[key]
	if !ok {
		return FieldDefinition{}, false
	}
	return fs.fields[i], true
}

// Fields returns the definitions in declaration order.
func (fs *FieldSet) Fields() []FieldDefinition {
	if fs == nil {
		return nil
	}
	out := make([]FieldDefinition, len(fs.fields))
	copy(out, fs.fields)
	return out
}

// Len returns the number of definitions.
func (fs *FieldSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.fields)
}
