package domain

import (
	"context"

	"github.com/tradepost/internal/store"
)

// RegisterRequest carries a new account registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateListingRequest carries a new listing
type CreateListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required"`
	Currency    string `json:"currency"`
	Category    string `json:"category" binding:"required"`
}

// UpdateListingRequest carries a partial listing update; nil fields are left untouched
type UpdateListingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Category    *string `json:"category"`
}

// UpdateSettingsRequest carries a partial settings update
type UpdateSettingsRequest struct {
	RegistrationOpen   *bool `json:"registration_open"`
	ListingAutoApprove *bool `json:"listing_auto_approve"`
}

// AuthService handles account lifecycle and credential checks
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*store.User, error)
	CheckCredentials(ctx context.Context, username, password string) (bool, error)
	EnsureOAuthUser(ctx context.Context, authID, name, provider string) (*store.User, error)
	ResolveUser(ctx context.Context, authID, name string) (*store.User, error)
}

// ListingService handles marketplace listings
type ListingService interface {
	Create(ctx context.Context, seller *store.User, req CreateListingRequest) (*store.Listing, error)
	Get(ctx context.Context, id string) (*store.Listing, error)
	List(ctx context.Context, filter store.ListingFilter) ([]*store.Listing, error)
	Update(ctx context.Context, actor *store.User, id string, req UpdateListingRequest) (*store.Listing, error)
	Delete(ctx context.Context, actor *store.User, id string) error
	Publish(ctx context.Context, actor *store.User, id string) (*store.Listing, error)
	MarkSold(ctx context.Context, actor *store.User, id string) (*store.Listing, error)
}

// UserService handles user administration
type UserService interface {
	List(ctx context.Context) ([]*store.User, error)
	Get(ctx context.Context, id string) (*store.User, error)
	Promote(ctx context.Context, id string) (*store.User, error)
	Demote(ctx context.Context, id string) (*store.User, error)
	Settings(ctx context.Context) (*store.Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*store.Settings, error)
}

// SystemService reports service and host status
type SystemService interface {
	Status(ctx context.Context) (*Status, error)
}

// Status is the payload of the status endpoint
type Status struct {
	Service   string     `json:"service"`
	Version   string     `json:"version"`
	UptimeSec int64      `json:"uptime_seconds"`
	Store     StoreStats `json:"store"`
	Host      HostStats  `json:"host"`
	Timestamp int64      `json:"timestamp"`
}

// StoreStats summarizes the data store contents
type StoreStats struct {
	Users           int            `json:"users"`
	Admins          int            `json:"admins"`
	Listings        int            `json:"listings"`
	ListingsByState map[string]int `json:"listings_by_state"`
	FileSizeBytes   int64          `json:"file_size_bytes"`
}

// HostStats reports host resource usage
type HostStats struct {
	CPUPercent  float64 `json:"cpu_percent"`
	CPUCores    int     `json:"cpu_cores"`
	MemTotal    uint64  `json:"mem_total_bytes"`
	MemUsed     uint64  `json:"mem_used_bytes"`
	MemPercent  float64 `json:"mem_percent"`
	DiskTotal   uint64  `json:"disk_total_bytes"`
	DiskUsed    uint64  `json:"disk_used_bytes"`
	DiskPercent float64 `json:"disk_percent"`
	DiskPath    string  `json:"disk_path"`
}
