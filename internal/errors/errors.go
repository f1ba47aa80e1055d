// Package errors defines the typed error codes used across the service and
// their mapping onto HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for propagation and HTTP mapping.
type Code string

const (
	ErrCodeUnauthorized      Code = "unauthorized"       // missing or invalid session
	ErrCodeInvalidInput      Code = "invalid_input"      // validation failure
	ErrCodeInvalidTransition Code = "invalid_transition" // illegal workflow state change
	ErrCodeNotFound          Code = "not_found"
	ErrCodeConflict          Code = "conflict" // version mismatch, duplicate upsert race
	ErrCodeRemote            Code = "remote"   // warehouse call failed
	ErrCodeInternal          Code = "internal"
)

// Error is the service-wide error type. Field is set for validation errors only.
type Error struct {
	Code    Code
	Message string
	Field   string
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, id)}
}

// InvalidInput reports a validation failure on a named field.
func InvalidInput(field, message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message, Field: field}
}

// Unauthorized reports an authentication or authorization failure.
func Unauthorized(message string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: message}
}

// InvalidTransition reports an illegal workflow state change.
func InvalidTransition(message string) *Error {
	return &Error{Code: ErrCodeInvalidTransition, Message: message}
}

// Remote wraps a failed warehouse or broker call.
func Remote(err error, message string) *Error {
	return &Error{Code: ErrCodeRemote, Message: message, cause: err}
}

// CodeOf extracts the code from an error chain, defaulting to internal.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// HTTPStatus maps an error to the HTTP status code it should produce.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeInvalidTransition, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
