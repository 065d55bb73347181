package services

import (
	"errors"
	"fmt"

	"github.com/upb/blog-platform/internal/validation"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypeInternal        ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
	// Fields carries per-field messages for validation errors
	Fields validation.FieldErrors
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// ValidationFailed reports field errors; the caller must not mutate state
func ValidationFailed(fields validation.FieldErrors) *DomainError {
	e := NewDomainError(ErrorTypeValidation, "The given data was invalid.", nil)
	e.Fields = fields
	return e
}

// FieldError is ValidationFailed for a single field and message
func FieldError(field, message string) *DomainError {
	fields := make(validation.FieldErrors)
	fields.Add(field, message)
	return ValidationFailed(fields)
}

// Unauthenticated reports a guest attempting an action that needs an account
func Unauthenticated() *DomainError {
	return NewDomainError(ErrorTypeUnauthenticated, "Unauthenticated.", nil)
}

// Forbidden reports a signed-in actor lacking ownership or admin rights
func Forbidden() *DomainError {
	return NewDomainError(ErrorTypeForbidden, "This action is unauthorized.", nil)
}

// NotFound reports a missing resource by name
func NotFound(resource string) *DomainError {
	return NewDomainError(ErrorTypeNotFound, resource+" not found", nil).WithDetail("resource", resource)
}

// fromValidation converts a validation.Error into ValidationFailed and
// wraps anything else as internal.
func fromValidation(err error) error {
	if verr, ok := validation.AsError(err); ok {
		return ValidationFailed(verr.Fields)
	}
	return WrapInternal("validation lookup failed", err)
}

// Error type checking helper functions

func isType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsUnauthenticatedError checks if an error is an unauthenticated error
func IsUnauthenticatedError(err error) bool {
	return isType(err, ErrorTypeUnauthenticated)
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return isType(err, ErrorTypeForbidden)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// GetFieldErrors returns the field messages of a validation error, or nil
func GetFieldErrors(err error) validation.FieldErrors {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Type == ErrorTypeValidation {
		return domainErr.Fields
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
