// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Code classifies a service error. The set mirrors the client-facing classes
// the API distinguishes: validation, conflict, not-found and auth failures.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidArgument
	CodeAlreadyExists
	CodeNotFound
	CodeUnauthenticated
	CodePermissionDenied
	CodeDeadlineExceeded
	CodeCanceled
)

// Error is the structured result every failed operation returns.
type Error struct {
	Code    Code
	Message string
	// Err is the underlying cause, kept for logs only.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Map converts repo/infra errors into service errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Code: CodeNotFound, Message: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Code: CodeAlreadyExists, Message: "record already exists", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeDeadlineExceeded, Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Code: CodeCanceled, Message: "request was canceled", Err: err}

	default:
		return &Error{Code: CodeInternal, Message: "internal server error", Err: err}
	}
}

// InvalidArgument creates an InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

// AlreadyExists creates an AlreadyExists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// NotFound creates a NotFound error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Unauthenticated creates an Unauthenticated error (bad or missing credentials).
func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

// PermissionDenied creates a PermissionDenied error.
func PermissionDenied(msg string) *Error {
	return &Error{Code: CodePermissionDenied, Message: msg}
}

// CodeOf returns the code of err after mapping.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(Map(err), &se) {
		return se.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status line the API answers with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument, CodeAlreadyExists:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case CodeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe text for err.
func Message(err error) string {
	var se *Error
	if errors.As(Map(err), &se) {
		return se.Message
	}
	return "internal server error"
}
