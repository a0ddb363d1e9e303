// Package apperrors defines the errors that cross the service boundary and
// know how to present themselves over REST and GraphQL.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an HTTPError for GraphQL clients.
type Code string

const (
	CodeBadUserInput    Code = "BAD_USER_INPUT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
	CodeInternal        Code = "INTERNAL_SERVER_ERROR"
)

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores when a unique row already exists.
	ErrDuplicate = errors.New("record already exists")
)

// HTTPError is an error with an HTTP status and a user facing message.
type HTTPError struct {
	Code    Code
	Status  int
	Message string
	Cause   error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// Extensions is read by the GraphQL executor when it formats errors.
func (e *HTTPError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

func newError(code Code, status int, format string, args ...any) *HTTPError {
	return &HTTPError{Code: code, Status: status, Message: fmt.Sprintf(format, args...)}
}

// Invalid is a 422 validation failure.
func Invalid(format string, args ...any) *HTTPError {
	return newError(CodeBadUserInput, http.StatusUnprocessableEntity, format, args...)
}

func Unauthorized(format string, args ...any) *HTTPError {
	return newError(CodeUnauthenticated, http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *HTTPError {
	return newError(CodeForbidden, http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *HTTPError {
	return newError(CodeNotFound, http.StatusNotFound, format, args...)
}

func TooManyRequests(format string, args ...any) *HTTPError {
	return newError(CodeTooManyRequests, http.StatusTooManyRequests, format, args...)
}

// Internal wraps an unexpected failure. The cause is kept for logging and
// never shown to clients.
func Internal(message string, cause error) *HTTPError {
	return &HTTPError{Code: CodeInternal, Status: http.StatusInternalServerError, Message: message, Cause: cause}
}

// As extracts an *HTTPError from err, if there is one.
func As(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for unknown errors.
func StatusOf(err error) int {
	if httpErr, ok := As(err); ok {
		return httpErr.Status
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to clients.
func PublicMessage(err error) string {
	if httpErr, ok := As(err); ok {
		return httpErr.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return "internal server error"
}
