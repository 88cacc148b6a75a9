package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/internal/config"
	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
	"github.com/tradepost/internal/validation"
)

const bcryptCost = 12

// authService implements the AuthService interface
type authService struct {
	db     *store.Store
	config *config.Config
	logger *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(db *store.Store, cfg *config.Config, logger *slog.Logger) domain.AuthService {
	return &authService{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// Register creates a local account. The very first account ever registered
// becomes an admin, as do usernames on the configured admin whitelist.
func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*store.User, error) {
	s.logger.InfoContext(ctx, "registering user", "username", req.Username)

	if !s.db.GetSettings().RegistrationOpen {
		return nil, domain.ErrRegistrationClosed
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		s.logger.WarnContext(ctx, "invalid username", "username", req.Username, "error", err)
		return nil, domain.WrapValidationError("username", err)
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		s.logger.WarnContext(ctx, "invalid email", "error", err)
		return nil, domain.WrapValidationError("email", err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, domain.WrapValidationError("password", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := store.NewUser(req.Username, req.Email, string(hash))
	if err := s.db.CreateUserWithRole(user, func(existing int) string {
		return s.roleFor(existing, req.Username)
	}); err != nil {
		return nil, mapStoreErr(err)
	}

	s.logger.InfoContext(ctx, "user registered", "username", user.Username, "role", user.Role)
	return user, nil
}

// roleFor grants the admin role to the first account and to whitelisted
// usernames. existing must be the user count taken atomically with the
// insert, or two concurrent registrations could both bootstrap as admin.
func (s *authService) roleFor(existing int, username string) string {
	if existing == 0 {
		return constants.RoleAdmin
	}
	for _, allowed := range s.config.Auth.AdminUsers {
		if strings.EqualFold(allowed, username) {
			return constants.RoleAdmin
		}
	}
	return constants.RoleUser
}

// CheckCredentials verifies a username/password pair. Unknown users and bad
// passwords are indistinguishable to the caller.
func (s *authService) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.db.GetUserByUsername(username)
	if err != nil {
		// Burn a bcrypt comparison anyway so unknown users cost the same
		// as bad passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"), []byte(password))
		s.logger.WarnContext(ctx, "login for unknown user", "username", username)
		return false, nil
	}
	if user.Provider != constants.ProviderLocal || user.PasswordHash == "" {
		s.logger.WarnContext(ctx, "password login for non-local account", "username", username)
		return false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "failed login", "username", username)
		return false, nil
	}
	return true, nil
}

// EnsureOAuthUser provisions a store record for an OAuth identity on first
// sight and returns the existing one afterwards
func (s *authService) EnsureOAuthUser(ctx context.Context, authID, name, provider string) (*store.User, error) {
	if user, err := s.db.GetUserByAuthID(authID); err == nil {
		return user, nil
	}

	username := uniqueUsername(s.db, name)
	user := store.NewUser(username, "", "")
	user.AuthID = authID
	user.Provider = provider
	if err := s.db.CreateUserWithRole(user, func(existing int) string {
		return s.roleFor(existing, username)
	}); err != nil {
		return nil, fmt.Errorf("provision oauth user: %w", err)
	}
	s.logger.InfoContext(ctx, "provisioned oauth user", "username", username, "provider", provider)
	return user, nil
}

// ResolveUser maps an auth-layer identity to a store user. Local identities
// registered before their first login have no auth ID yet; those are found
// by username and the auth ID is backfilled.
func (s *authService) ResolveUser(ctx context.Context, authID, name string) (*store.User, error) {
	if user, err := s.db.GetUserByAuthID(authID); err == nil {
		return user, nil
	}

	if strings.HasPrefix(authID, constants.ProviderLocal+"_") {
		user, err := s.db.GetUserByUsername(name)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		user.AuthID = authID
		if err := s.db.UpdateUser(user); err != nil {
			return nil, fmt.Errorf("backfill auth id: %w", err)
		}
		return user, nil
	}

	return nil, domain.ErrUserNotFound
}

// uniqueUsername derives a valid, unused username from an OAuth display name
func uniqueUsername(db *store.Store, name string) string {
	base := strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return -1
		}
	}, name))
	// Leading separators never validate, no matter what counter gets
	// appended below
	base = strings.Trim(base, "-_")
	if len(base) < 3 {
		base = "seller"
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 2; ; i++ {
		if _, err := db.GetUserByUsername(candidate); err != nil {
			if validation.ValidateUsername(candidate) == nil {
				return candidate
			}
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
