package constants

import "time"

// User role values
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Auth provider values
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// Listing status values
const (
	ListingStatusDraft   = "draft"
	ListingStatusActive  = "active"
	ListingStatusSold    = "sold"
	ListingStatusRemoved = "removed"
)

// Listing categories accepted by the marketplace
var ListingCategories = []string{
	"electronics",
	"fashion",
	"home",
	"toys",
	"sports",
	"books",
	"other",
}

// Session and token lifetimes
const (
	CookieDuration     = 7 * 24 * time.Hour
	APITokenMaxTTL     = 365 * 24 * time.Hour
	APITokenDefaultTTL = 30 * 24 * time.Hour
)

// TokenIssuer is the iss claim on session and API tokens
const TokenIssuer = "tradepost"
