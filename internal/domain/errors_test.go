package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("TEST_CODE", "something broke", nil)
	if err.Error() != "TEST_CODE: something broke" {
		t.Errorf("unexpected error string: %s", err.Error())
	}

	wrapped := NewDomainError("TEST_CODE", "something broke", errors.New("root cause"))
	if wrapped.Error() != "TEST_CODE: something broke: root cause" {
		t.Errorf("unexpected error string: %s", wrapped.Error())
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewDomainError("X", "y", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrUserNotFound) {
		t.Error("ErrUserNotFound should be a not-found error")
	}
	if !IsNotFound(fmt.Errorf("lookup: %w", ErrListingNotFound)) {
		t.Error("wrapped ErrListingNotFound should be a not-found error")
	}
	if IsNotFound(ErrUserExists) {
		t.Error("ErrUserExists is not a not-found error")
	}
}

func TestIsValidationError(t *testing.T) {
	err := WrapValidationError("username", errors.New("too short"))
	if !IsValidationError(err) {
		t.Error("expected a validation error")
	}
	if !IsValidationError(fmt.Errorf("register: %w", err)) {
		t.Error("expected wrapped validation error to be detected")
	}
	if IsValidationError(ErrLastAdmin) {
		t.Error("ErrLastAdmin is not a validation error")
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(fmt.Errorf("create: %w", ErrUserExists)) {
		t.Error("wrapped ErrUserExists should be a conflict")
	}
	if IsConflict(ErrUserNotFound) {
		t.Error("ErrUserNotFound is not a conflict")
	}
}
