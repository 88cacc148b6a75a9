package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/tradepost/internal/constants"
)

var (
	// usernameRegex allows only alphanumeric characters, hyphens, and underscores
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// emailRegex is a pragmatic check, not a full RFC 5322 parser
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Reserved names that should not be used as usernames
var reservedUsernames = map[string]bool{
	"admin":     true,
	"root":      true,
	"system":    true,
	"tradepost": true,
	"api":       true,
	"me":        true,
}

const maxPriceCents = 100_000_000 // one million units, in cents

// ValidateUsername validates an account username
func ValidateUsername(name string) error {
	if len(name) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(name) > 32 {
		return errors.New("username must be 32 characters or less")
	}
	if reservedUsernames[strings.ToLower(name)] {
		return errors.New("username is reserved")
	}
	if !usernameRegex.MatchString(name) {
		return errors.New("username must contain only letters, numbers, hyphens, and underscores")
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "_") {
		return errors.New("username cannot start with a hyphen or underscore")
	}
	if strings.HasSuffix(name, "-") || strings.HasSuffix(name, "_") {
		return errors.New("username cannot end with a hyphen or underscore")
	}
	return nil
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if len(email) > 254 {
		return errors.New("email is too long")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("email address is invalid")
	}
	return nil
}

// ValidatePassword enforces the password policy: at least 8 characters with
// at least one letter and one digit
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt truncates beyond 72 bytes
		return errors.New("password must be 72 characters or less")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateListingTitle validates a listing title
func ValidateListingTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("listing title cannot be empty")
	}
	if len(title) > 140 {
		return errors.New("listing title must be 140 characters or less")
	}
	return nil
}

// ValidateListingDescription validates a listing description
func ValidateListingDescription(description string) error {
	if len(description) > 10_000 {
		return errors.New("listing description must be 10000 characters or less")
	}
	return nil
}

// ValidatePrice validates a listing price in cents
func ValidatePrice(priceCents int64) error {
	if priceCents <= 0 {
		return errors.New("price must be positive")
	}
	if priceCents > maxPriceCents {
		return fmt.Errorf("price cannot exceed %d cents", maxPriceCents)
	}
	return nil
}

// ValidateCategory checks the category against the accepted set
func ValidateCategory(category string) error {
	for _, c := range constants.ListingCategories {
		if category == c {
			return nil
		}
	}
	return fmt.Errorf("unknown category %q (accepted: %s)", category, strings.Join(constants.ListingCategories, ", "))
}
