// Package apperr defines the typed error taxonomy the engine exposes to its
// callers: NotFoundError for absent entities and ValidationError for broken
// business rules. Anything else is a storage failure surfaced verbatim.
package apperr

import "errors"

// NotFoundError signals that a referenced entity does not resolve.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFound constructs a NotFoundError.
func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

// ValidationError signals a violated business rule, optionally with
// field-level detail.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation constructs a ValidationError without field detail.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// ValidationFields constructs a ValidationError with field detail.
func ValidationFields(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
