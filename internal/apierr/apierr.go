// Package apierr carries an HTTP status and a stable machine-readable code
// alongside a wrapped error, so services can classify failures without
// importing gin.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound            = "not_found"
	CodeForbidden           = "forbidden"
	CodeUnauthorized        = "unauthorized"
	CodeValidation          = "validation_error"
	CodeInvalidReviewStatus = "invalid_review_status"
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

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusUnprocessableEntity, CodeValidation, fmt.Errorf(format, args...))
}

func InvalidReviewStatus(status string) *Error {
	return New(http.StatusUnprocessableEntity, CodeInvalidReviewStatus, fmt.Errorf("invalid review_status %q", status))
}

// From extracts the *Error from err's chain, defaulting to a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}
