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

// Newf is New with a formatted message as the wrapped error.
func Newf(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}

func BadRequest(code string, err error) *Error   { return New(http.StatusBadRequest, code, err) }
func Unauthorized(code string, err error) *Error { return New(http.StatusUnauthorized, code, err) }
func Forbidden(code string, err error) *Error    { return New(http.StatusForbidden, code, err) }
func NotFound(code string, err error) *Error     { return New(http.StatusNotFound, code, err) }
func Conflict(code string, err error) *Error     { return New(http.StatusConflict, code, err) }

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}
