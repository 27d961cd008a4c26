// Package apperr holds the error taxonomy shared by the valuation pipeline
// and its transport layer.
package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrOutOfRegion is returned when a request or snapped coordinate falls
	// outside the supported bounding box.
	ErrOutOfRegion = errors.New("only the Boston metropolitan area is supported")

	// ErrMissingInput is returned when latitude or longitude is absent or not a number.
	ErrMissingInput = errors.New("latitude/longitude is required")

	// ErrInvalidInput is returned when an optional request field has the wrong type.
	ErrInvalidInput = errors.New("invalid request")

	// ErrNotReady is returned when the models or the parcel table are not loaded.
	ErrNotReady = errors.New("server not ready: model/table not loaded")

	// ErrNotFound is returned by loaders when a backing file does not exist.
	ErrNotFound = errors.New("artifact not found")
)

// StatusCode maps an error from the pipeline to the HTTP status the
// transport layer should answer with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrOutOfRegion), errors.Is(err, ErrMissingInput), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return StatusCode(err) == http.StatusBadRequest
}

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string][]string
	cause  error
}

// NewValidationError wraps cause with field messages.
func NewValidationError(cause error, fields map[string][]string) *ValidationError {
	return &ValidationError{Fields: fields, cause: cause}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return e.cause.Error()
	}
	return e.cause.Error() + ": " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// FieldErrors returns the field messages carried by err, if any.
func FieldErrors(err error) map[string][]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
