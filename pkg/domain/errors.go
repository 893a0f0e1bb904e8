package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
	// Fields maps form field names to messages for validation errors
	Fields map[string]string
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnavailable  = "UPSTREAM_UNAVAILABLE"
)

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, fields map[string]string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
		Fields:  fields,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(msg string) error {
	if msg == "" {
		msg = "Authentication required"
	}
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: msg,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// NewConflictError creates a new conflict error wrapping cause
func NewConflictError(msg string, cause error) error {
	return &DomainError{
		Code:    ErrCodeConflict,
		Message: msg,
		Err:     cause,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(msg string) error {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: msg,
	}
}

// NewUnavailableError wraps a failure to reach the remote sheet
func NewUnavailableError(err error) error {
	return &DomainError{
		Code:    ErrCodeUnavailable,
		Message: "The lead sheet could not be reached",
		Err:     err,
	}
}

func code(err error) (string, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	c, ok := code(err)
	return ok && c == ErrCodeNotFound
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	c, ok := code(err)
	return ok && c == ErrCodeValidation
}

// IsUnauthorized checks if the error is an unauthorized error
func IsUnauthorized(err error) bool {
	c, ok := code(err)
	return ok && c == ErrCodeUnauthorized
}

// IsConflict checks if the error is a conflict error
func IsConflict(err error) bool {
	c, ok := code(err)
	return ok && c == ErrCodeConflict
}

// IsBadRequest checks if the error is a bad request error
func IsBadRequest(err error) bool {
	c, ok := code(err)
	return ok && c == ErrCodeBadRequest
}

// IsUnavailable checks if the error is an upstream unavailable error
func IsUnavailable(err error) bool {
	c, ok := code(err)
	return ok && c == ErrCodeUnavailable
}

// ValidationFields returns the per-field messages of a validation error, if any
func ValidationFields(err error) map[string]string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// ErrorMessage returns the user-facing message of a domain error, or "" for other errors
func ErrorMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
