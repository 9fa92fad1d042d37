package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, "validation_error", fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf(format, args...))
}

func PermissionDenied(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, "permission_denied", fmt.Errorf(format, args...))
}

func PreconditionFailed(format string, args ...interface{}) *Error {
	return New(http.StatusPreconditionFailed, "precondition_failed", fmt.Errorf(format, args...))
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, "invalid_transition", fmt.Errorf(format, args...))
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "internal_error", err)
}

// From extracts an *Error from err's chain, wrapping unknown errors as 500s.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

func IsCode(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
