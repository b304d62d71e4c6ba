package app

import (
	"fmt"
	"net/http"
)

// StatusError carries the HTTP status a handler should answer with. Anything
// else that escapes the app layer maps to a generic 500.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Validationf reports malformed or disallowed input (400).
func Validationf(format string, args ...any) error {
	return &StatusError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing or unusable credential (401).
func Unauthorized(msg string) error {
	return &StatusError{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden reports an authenticated caller lacking rights (403).
func Forbidden(msg string) error {
	return &StatusError{Status: http.StatusForbidden, Message: msg}
}

// NotFound reports a missing resource (404).
func NotFound(msg string) error {
	return &StatusError{Status: http.StatusNotFound, Message: msg}
}

// HTTPStatus extracts the status for err, defaulting to 500.
func HTTPStatus(err error) int {
	if statusErr, ok := err.(*StatusError); ok {
		return statusErr.Status
	}
	return http.StatusInternalServerError
}
