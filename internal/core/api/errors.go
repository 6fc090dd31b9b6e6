package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/solatis/fieldfilter/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error mapping shared by the gRPC and HTTP transports.
// Validation errors map to INVALID_ARGUMENT / 400.
// Missing datasets map to NOT_FOUND / 404.
// Oversized inline payloads map to RESOURCE_EXHAUSTED / 413.
// Context timeouts map to DEADLINE_EXCEEDED / 504.
// Everything else is treated as a store failure: UNAVAILABLE / 503.

// ErrNoStore indicates a dataset query against a service with no database.
var ErrNoStore = errors.New("no dataset store configured")

var validationErrors = []error{
	types.ErrUnknownField,
	types.ErrInvalidOperator,
	types.ErrInvalidValue,
	types.ErrInvalidFieldType,
	types.ErrMissingOptions,
	types.ErrUnknownOption,
	types.ErrDuplicateField,
	types.ErrPathTooDeep,
	types.ErrTooManyConditions,
	types.ErrTooManyValues,
	types.ErrInvalidSortDirection,
	types.ErrInvalidRequest,
}

// Code classifies err as a gRPC status code.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	switch {
	case errors.Is(err, types.ErrDatasetNotFound):
		return codes.NotFound
	case errors.Is(err, types.ErrTooManyRecords):
		return codes.ResourceExhausted
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return codes.InvalidArgument
		}
	}
	return codes.Unavailable
}

// GRPCError converts err into a status error.
func GRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), err.Error())
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusRequestEntityTooLarge
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusServiceUnavailable
	}
}
