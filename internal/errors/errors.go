// Package errors provides standardized domain errors with machine-readable
// codes for the StoryBook API.
//
//	// In services - return typed errors
//	return errors.GenerationFailed("failed to generate story", err)
//
//	// In handlers - inspect the code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) && domainErr.Code == errors.CodeNotFound { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION"
	CodeConflict         Code = "CONFLICT"
	CodeGenerationFailed Code = "GENERATION_FAILED"
	CodeRepository       Code = "REPOSITORY"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// Is matches errors by code so sentinel comparisons work across instances.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithDetails attaches structured details to a copy of the error.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// Sentinel instances for errors.Is checks.
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "invalid input"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrGenerationFailed = &Error{Code: CodeGenerationFailed, Message: "generation failed"}
	ErrRepository       = &Error{Code: CodeRepository, Message: "storage operation failed"}
)

// NotFound creates a NOT_FOUND error.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Validation creates a VALIDATION error.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// Conflict creates a CONFLICT error.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// GenerationFailed creates a GENERATION_FAILED error wrapping the upstream
// cause. The cause is preserved for logs; the message is what clients see.
func GenerationFailed(message string, cause error) *Error {
	return &Error{Code: CodeGenerationFailed, Message: message, cause: cause}
}

// Repository creates a REPOSITORY error wrapping the storage-layer cause.
func Repository(message string, cause error) *Error {
	return &Error{Code: CodeRepository, Message: message, cause: cause}
}

// Internal creates an INTERNAL error wrapping the cause.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}
