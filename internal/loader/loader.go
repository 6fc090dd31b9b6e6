// Package loader reads field catalogues, conditions, records and datasets
// from JSON or YAML files.
//
// YAML is decoded into generic values, normalised to JSON-compatible shapes
// and then decoded through encoding/json, so both formats share the custom
// FilterValue and Bound decoding in internal/types. Numbers therefore always
// arrive as float64 regardless of source format.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/solatis/fieldfilter/internal/types"
	"gopkg.in/yaml.v3"
)

// Format is a file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks a format from the file extension, falling back to
// sniffing the first non-space byte.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses data in format into out.
func Decode(data []byte, format Format, out any) error {
	if format == FormatJSON {
		return json.Unmarshal(data, out)
	}

	var generic any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&generic); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty document")
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	normalised, err := json.Marshal(normalise(generic))
	if err != nil {
		return fmt.Errorf("failed to convert YAML: %w", err)
	}
	return json.Unmarshal(normalised, out)
}

// normalise rewrites YAML-decoded values into shapes encoding/json accepts.
func normalise(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalise(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalise(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalise(item)
		}
		return out
	case time.Time:
		if val.Equal(val.Truncate(24*time.Hour)) && val.Location() == time.UTC {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

// readFile loads path and decodes it into out.
func readFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := Decode(data, DetectFormat(path, data), out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadFields loads and validates a list of field definitions.
func ReadFields(path string) (*types.FieldSet, error) {
	var defs []types.FieldDefinition
	if err := readFile(path, &defs); err != nil {
		return nil, err
	}
	fields, err := types.NewFieldSet(defs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

// ReadConditions loads a condition list and assigns IDs to rows without one.
func ReadConditions(path string) ([]types.Condition, error) {
	var conds []types.Condition
	if err := readFile(path, &conds); err != nil {
		return nil, err
	}
	if len(conds) > types.MaxConditions {
		return nil, fmt.Errorf("%s: %d conditions: %w", path, len(conds), types.ErrTooManyConditions)
	}
	return types.EnsureConditionIDs(conds), nil
}

// ReadRecords loads a list of records.
func ReadRecords(path string) ([]types.Record, error) {
	var records []types.Record
	if err := readFile(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadDataset loads a {name, fields, records} bundle. The name defaults to
// the file name without extension.
func ReadDataset(path string) (*types.Dataset, error) {
	var ds types.Dataset
	if err := readFile(path, &ds); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ds.Name) == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if _, err := types.NewFieldSet(ds.Fields); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Version = ""
	return &ds, nil
}

// ParseSort parses "key" or "key:asc|desc". An empty string means no sort.
func ParseSort(s string) (*types.SortConfig, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	cfg := &types.SortConfig{Key: s, Direction: types.SortAsc}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		cfg.Key = s[:i]
		cfg.Direction = types.SortDirection(strings.ToLower(s[i+1:]))
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("sort %q: key is empty", s)
	}
	if cfg.Direction == "" {
		cfg.Direction = types.SortAsc
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sort %q: %w", s, err)
	}
	return cfg, nil
}
