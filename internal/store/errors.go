package store

import "errors"

// Store-level errors. Services translate these into domain errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrListingNotFound = errors.New("listing not found")
)
