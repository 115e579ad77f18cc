package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a specific input field. The API
// error handler renders a ValidationError's fields as a {field: message} map.
type FieldError struct {
	Field string
	Error string
}

// ValidationError marks an error as a 400-class input problem. Without
// fields it renders as a plain {"error": message} body.
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

func (err ValidationError) Unwrap() error { return err.Err }

// shutdown signals the server to stop serving; the HTTP error handler
// triggers a graceful shutdown when it catches one.
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
