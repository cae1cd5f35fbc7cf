package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// BackendError wraps a failed gateway call. Status is the HTTP status code
// when the backend answered, 0 when the call never completed.
type BackendError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func NewBackendError(op string, status int, msg string, err error) *BackendError {
	return &BackendError{Op: op, Status: status, Message: msg, Err: err}
}

func (err *BackendError) Error() string {
	if err.Message != "" {
		return err.Op + ": " + err.Message
	}
	if err.Err != nil {
		return err.Op + ": " + err.Err.Error()
	}
	return err.Op + ": backend call failed"
}

func (err *BackendError) Unwrap() error { return err.Err }

// IsBackendError reports whether any error in err's cause chain is a BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
