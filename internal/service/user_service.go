package service

import (
	"context"
	"log/slog"

	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
)

// userService implements the UserService interface
type userService struct {
	db     *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(db *store.Store, logger *slog.Logger) domain.UserService {
	return &userService{db: db, logger: logger}
}

// List returns all users
func (s *userService) List(ctx context.Context) ([]*store.User, error) {
	return s.db.ListUsers(), nil
}

// Get returns a user by ID
func (s *userService) Get(ctx context.Context, id string) (*store.User, error) {
	user, err := s.db.GetUser(id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return user, nil
}

// Promote grants the admin role. Promoting an admin is a no-op.
func (s *userService) Promote(ctx context.Context, id string) (*store.User, error) {
	user, err := s.db.GetUser(id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if user.IsAdmin() {
		return user, nil
	}

	user.Role = constants.RoleAdmin
	if err := s.db.UpdateUser(user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user promoted to admin", "username", user.Username)
	return s.db.GetUser(id)
}

// Demote revokes the admin role. The last remaining admin cannot be
// demoted.
func (s *userService) Demote(ctx context.Context, id string) (*store.User, error) {
	user, err := s.db.GetUser(id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !user.IsAdmin() {
		return user, nil
	}

	if _, admins := s.db.CountUsers(); admins <= 1 {
		s.logger.WarnContext(ctx, "refused to demote last admin", "username", user.Username)
		return nil, domain.ErrLastAdmin
	}

	user.Role = constants.RoleUser
	if err := s.db.UpdateUser(user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "admin demoted", "username", user.Username)
	return s.db.GetUser(id)
}

// Settings returns the site settings
func (s *userService) Settings(ctx context.Context) (*store.Settings, error) {
	return s.db.GetSettings(), nil
}

// UpdateSettings applies a partial settings update
func (s *userService) UpdateSettings(ctx context.Context, req domain.UpdateSettingsRequest) (*store.Settings, error) {
	settings := s.db.GetSettings()
	if req.RegistrationOpen != nil {
		settings.RegistrationOpen = *req.RegistrationOpen
	}
	if req.ListingAutoApprove != nil {
		settings.ListingAutoApprove = *req.ListingAutoApprove
	}
	if err := s.db.UpdateSettings(settings); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "settings updated",
		"registration_open", settings.RegistrationOpen,
		"listing_auto_approve", settings.ListingAutoApprove,
	)
	return s.db.GetSettings(), nil
}
