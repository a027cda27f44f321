package core

import "github.com/pkg/errors"

// FieldError attaches a message to a single request field, e.g. an email
// off the campus mail domain or a leave range ending before it starts.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a request-level validation failure. The API error
// handler renders Fields as a {field: message} map; Err is kept for logs.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable integrity problem. The API error
// handler triggers a graceful stop when it catches one.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
