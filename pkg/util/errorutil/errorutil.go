package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in the JSON error envelope.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string, details map[string]any) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything that is not
// already a DomainError is reported as internal.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

func IsConflict(err error) bool { return HasCode(err, CodeConflict) }

func IsForbidden(err error) bool { return HasCode(err, CodeForbidden) }

func IsValidation(err error) bool { return HasCode(err, CodeValidation) }
