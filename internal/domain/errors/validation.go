package errors

import (
	"net/http"
	"strings"
)

// Field error reasons.
const (
	ReasonRequired = "required"
	ReasonInvalid  = "invalid"
	ReasonTooLong  = "too_long"
	ReasonMismatch = "mismatch"
	ReasonTaken    = "taken"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError rejects a write before anything is persisted. It lists every
// field that failed, including uniqueness conflicts.
type ValidationError struct {
	fields []FieldError
}

// NewValidationError builds a ValidationError from the given field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{fields: fields}
}

// Fields returns the rejected fields in the order they were detected.
func (e *ValidationError) Fields() []FieldError {
	return append([]FieldError(nil), e.fields...)
}

// Has reports whether field was rejected for reason.
func (e *ValidationError) Has(field, reason string) bool {
	for _, f := range e.fields {
		if f.Field == field && f.Reason == reason {
			return true
		}
	}

	return false
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + e.Details()
}

// HTTPCode returns the HTTP status code
func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_FAILED"
}

// Message returns the user-friendly error message
func (e *ValidationError) Message() string {
	return "Input validation failed"
}

// Details renders the field list as "field: reason; ...".
func (e *ValidationError) Details() string {
	parts := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}

	return strings.Join(parts, "; ")
}
