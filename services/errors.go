// services/errors.go - Business rule failures
package services

import (
	"errors"
	"fmt"
)

// Failure kinds. Match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrWindowClosed     = errors.New("window closed")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// FieldError describes one failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned by every service for rule violations the caller can act on.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return newError(ErrNotFound, "%s not found", what)
}

func forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// Validation collects field failures and turns them into a single error.
type Validation struct {
	fields []FieldError
}

func (v *Validation) Add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

func (v *Validation) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Err returns nil when nothing failed.
func (v *Validation) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	msg := v.fields[0].Message
	if len(v.fields) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(v.fields)-1)
	}
	return &Error{Kind: ErrValidation, Message: msg, Fields: v.fields}
}

// FieldsOf extracts per-field failures from a validation error.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func invalid(field, message string) error {
	return &Error{Kind: ErrValidation, Message: message, Fields: []FieldError{{Field: field, Message: message}}}
}
