package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeInternal       ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
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

// Is implements errors.Is
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

// Domain error variables

var (
	// Authentication errors (identity could not be established)
	ErrNoIdentity       = NewDomainError(ErrorTypeAuthentication, "identity required", nil)
	ErrInvalidSession   = NewDomainError(ErrorTypeAuthentication, "invalid or expired session", nil)
	ErrInvalidAssertion = NewDomainError(ErrorTypeAuthentication, "malformed internal assertion", nil)

	// Authorization errors (identity established but insufficient privilege)
	ErrNotAdmin     = NewDomainError(ErrorTypeAuthorization, "administrator privilege required", nil)
	ErrAccessDenied = NewDomainError(ErrorTypeAuthorization, "access denied", nil)

	// Not found errors (referenced entity absent)
	ErrUserNotFound  = NewDomainError(ErrorTypeNotFound, "caller not registered", nil)
	ErrFileNotFound  = NewDomainError(ErrorTypeNotFound, "file not found", nil)
	ErrAdminNotFound = NewDomainError(ErrorTypeNotFound, "admin record not found", nil)

	// Validation errors (malformed input)
	ErrInvalidInput  = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidFileID = NewDomainError(ErrorTypeValidation, "invalid file id", nil)
	ErrMissingEmail  = NewDomainError(ErrorTypeValidation, "identity has no email", nil)

	// Internal errors (collaborator/storage failure; always deny-safe)
	ErrInternal       = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabase       = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrGrantFailure   = NewDomainError(ErrorTypeInternal, "failed to issue access grant", nil)
	ErrIdentityLookup = NewDomainError(ErrorTypeInternal, "identity provider lookup failed", nil)
)

// Error type checking helper functions

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeAuthentication
	}
	return false
}

// IsAuthorizationError checks if an error is an authorization error
func IsAuthorizationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeAuthorization
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorDetails returns the details map of a domain error, or nil
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error. Collaborator failures
// during security-relevant checks go through here so they surface as a
// deny-safe 500, never an allow.
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
