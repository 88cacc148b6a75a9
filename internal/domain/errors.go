package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

var (
	// User errors
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrUserExists = &DomainError{
		Code:    "USER_EXISTS",
		Message: "a user with this username or email already exists",
	}
	ErrRegistrationClosed = &DomainError{
		Code:    "REGISTRATION_CLOSED",
		Message: "registration is currently closed",
	}
	ErrLastAdmin = &DomainError{
		Code:    "LAST_ADMIN",
		Message: "cannot demote the last remaining admin",
	}

	// Listing errors
	ErrListingNotFound = &DomainError{
		Code:    "LISTING_NOT_FOUND",
		Message: "listing not found",
	}
	ErrNotListingOwner = &DomainError{
		Code:    "NOT_LISTING_OWNER",
		Message: "listing belongs to another seller",
	}
	ErrListingInvalidState = &DomainError{
		Code:    "LISTING_INVALID_STATE",
		Message: "invalid listing state transition",
	}
)

// WrapValidationError wraps a validation failure for a named field
func WrapValidationError(field string, err error) *DomainError {
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("invalid %s", field),
		Cause:   err,
	}
}

// IsNotFound reports whether err is a not-found domain error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrListingNotFound)
}

// IsValidationError reports whether err is a validation domain error
func IsValidationError(err error) bool {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Code == "VALIDATION_ERROR"
	}
	return false
}

// IsConflict reports whether err signals a uniqueness conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrUserExists)
}
