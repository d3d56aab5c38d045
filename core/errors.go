package core

import "github.com/pkg/errors"

// FieldError attaches a message to the struct field that failed validation.
type FieldError struct {
	Field string
	Error string
}

// ValidationError aggregates per-field validation failures around a root
// cause. The API layer renders Fields as a field-to-message map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdownError asks the server to terminate gracefully; it is reserved for
// integrity faults that a retry cannot repair.
type shutdownError struct {
	msg string
}

func NewShutdownError(msg string) error {
	return &shutdownError{msg: msg}
}

func (err *shutdownError) Error() string { return err.msg }

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
