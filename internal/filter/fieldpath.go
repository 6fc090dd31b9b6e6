// Package filter evaluates typed filter conditions against records and
// orders the surviving records.
//
// The package is pure: no I/O, no shared mutable state, no goroutines.
// ApplyFilters and SortRecords never mutate their inputs, and repeated calls
// with identical inputs produce identical outputs, so callers may re-run
// them on every edit without accumulating state.
package filter

import "strings"

/*
 * Field path resolution for records.
 *
 * Resolves dot-delimited keys ("address.city") through nested keyed
 * structures. Resolution never fails loudly: any step that lands on a
 * non-map value or a missing key reports absent.
 *
 * Key functions:
 *   - ParsePath: splits a field key into segments
 *   - Resolve: resolves a field key against a record
 *   - resolveRecursive: internal recursive traversal
 *
 * Null handling: a JSON null leaf is reported as found with a nil value.
 * Every consumer in this package treats nil exactly like absent, the same
 * way missing fields and null values share one policy during evaluation.
 */

// ParsePath splits a dot-delimited field key into segments.
func ParsePath(key string) []string {
	return strings.Split(key, ".")
}

// Resolve walks record following the dot-delimited key.
// Returns the referenced value and true, or nil and false when any level is
// missing or not a keyed structure.
func Resolve(record any, key string) (any, bool) {
	return resolveRecursive(ParsePath(key), record)
}

// ResolveSegments is Resolve for a pre-split path.
func ResolveSegments(record any, path []string) (any, bool) {
	return resolveRecursive(path, record)
}

// resolveRecursive descends one segment per call.
func resolveRecursive(path []string, current any) (any, bool) {
	if len(path) == 0 {
		return current, true
	}

	switch v := current.(type) {
	case map[string]any:
		val, ok := v[path[0]]
		if !ok {
			return nil, false
		}
		return resolveRecursive(path[1:], val)

	case map[string]string:
		// flat string maps show up in records built from query strings and
		// CSV rows; they can only terminate a path
		if len(path) != 1 {
			return nil, false
		}
		val, ok := v[path[0]]
		if !ok {
			return nil, false
		}
		return val, true

	case nil:
		// Null value at intermediate position
		return nil, false

	default:
		// Scalar or list value but path continues
		return nil, false
	}
}

// present resolves key and folds a nil leaf into absent.
func present(record any, key string) (any, bool) {
	v, ok := Resolve(record, key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
