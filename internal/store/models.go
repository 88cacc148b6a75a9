package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradepost/internal/constants"
)

// User represents a marketplace account
type User struct {
	ID           string    `json:"id"`
	AuthID       string    `json:"auth_id"` // provider-scoped ID issued by the auth layer
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" yaml:"-"` // never expose the hash in API responses
	Role         string    `json:"role"`       // user, admin
	Provider     string    `json:"provider"`   // local, google
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// Listing represents a marketplace listing
type Listing struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Status      string    `json:"status"` // draft, active, sold, removed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Settings holds site-wide settings
type Settings struct {
	ID                 string    `json:"id"`
	RegistrationOpen   bool      `json:"registration_open"`
	ListingAutoApprove bool      `json:"listing_auto_approve"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUser creates a new User with a generated UUID
func NewUser(username, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         constants.RoleUser,
		Provider:     constants.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewListing creates a new Listing with a generated UUID
func NewListing(sellerID, title, description string, priceCents int64, currency, category string) *Listing {
	now := time.Now()
	if currency == "" {
		currency = "USD"
	}
	return &Listing{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Title:       title,
		Description: description,
		PriceCents:  priceCents,
		Currency:    currency,
		Category:    category,
		Status:      constants.ListingStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewSettings creates default settings
func NewSettings() *Settings {
	return &Settings{
		ID:                 uuid.New().String(),
		RegistrationOpen:   true,
		ListingAutoApprove: true,
		UpdatedAt:          time.Now(),
	}
}
