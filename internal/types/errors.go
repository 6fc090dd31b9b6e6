package types

import "errors"

// Sentinel errors for fieldfilter operations.
// The filter core itself never returns these; they surface from validation,
// loaders, the store and the transport layers.
var (
	// ErrUnknownField indicates a condition references a key with no FieldDefinition.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidOperator indicates an operator outside the field type's legal set.
	ErrInvalidOperator = errors.New("invalid operator for field type")

	// ErrInvalidValue indicates a condition value whose shape does not fit its operator.
	ErrInvalidValue = errors.New("invalid value for operator")

	// ErrInvalidFieldType indicates a FieldDefinition with an unrecognised type.
	ErrInvalidFieldType = errors.New("invalid field type")

	// ErrMissingOptions indicates a select field declared without options.
	ErrMissingOptions = errors.New("select field requires options")

	// ErrUnknownOption indicates a select value not among the field's options.
	ErrUnknownOption = errors.New("value is not a declared option")

	// ErrDuplicateField indicates two FieldDefinitions share a key.
	ErrDuplicateField = errors.New("duplicate field key")

	// ErrPathTooDeep indicates a field key exceeds MaxPathDepth segments.
	ErrPathTooDeep = errors.New("field path exceeds maximum depth")

	// ErrTooManyConditions indicates a query exceeds MaxConditions.
	ErrTooManyConditions = errors.New("too many conditions")

	// ErrTooManyValues indicates an in/notIn list exceeds MaxMultiSelectValues.
	ErrTooManyValues = errors.New("multi-select condition has too many values")

	// ErrInvalidSortDirection indicates a direction other than asc/desc.
	ErrInvalidSortDirection = errors.New("sort direction must be asc or desc")

	// ErrDatasetNotFound indicates the store holds no dataset with that name.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrTooManyRecords indicates inline records exceed the configured cap.
	ErrTooManyRecords = errors.New("too many records")

	// ErrInvalidRequest indicates a malformed query envelope (e.g. both a
	// dataset name and inline records).
	ErrInvalidRequest = errors.New("invalid request")
)
