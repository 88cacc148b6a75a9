package store

import (
	"strings"
	"time"

	"github.com/tradepost/internal/constants"
)

// CreateUser adds a new user. Usernames and emails are unique,
// case-insensitively.
func (s *Store) CreateUser(user *User) error {
	return s.createUser(user, nil)
}

// CreateUserWithRole adds a new user whose role is picked from the number of
// already-stored users. The decision and the insert run under one lock, so
// concurrent inserts cannot both observe an empty store.
func (s *Store) CreateUserWithRole(user *User, pick func(existing int) string) error {
	return s.createUser(user, pick)
}

func (s *Store) createUser(user *User, pick func(existing int) string) error {
	return s.mutate(func(d *dataset) error {
		for _, u := range d.Users {
			if strings.EqualFold(u.Username, user.Username) || (user.Email != "" && strings.EqualFold(u.Email, user.Email)) {
				return ErrUserExists
			}
		}
		cp := *user
		if pick != nil {
			cp.Role = pick(len(d.Users))
			user.Role = cp.Role
		}
		d.Users = append(d.Users, &cp)
		return nil
	})
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(id string) (*User, error) {
	return s.findUser(func(u *User) bool { return u.ID == id })
}

// GetUserByUsername retrieves a user by username (case-insensitive)
func (s *Store) GetUserByUsername(username string) (*User, error) {
	return s.findUser(func(u *User) bool { return strings.EqualFold(u.Username, username) })
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (s *Store) GetUserByEmail(email string) (*User, error) {
	return s.findUser(func(u *User) bool { return strings.EqualFold(u.Email, email) })
}

// GetUserByAuthID retrieves a user by the provider-scoped auth ID
func (s *Store) GetUserByAuthID(authID string) (*User, error) {
	return s.findUser(func(u *User) bool { return u.AuthID == authID })
}

func (s *Store) findUser(match func(*User) bool) (*User, error) {
	var found *User
	s.view(func(d *dataset) {
		for _, u := range d.Users {
			if match(u) {
				cp := *u
				found = &cp
				return
			}
		}
	})
	if found == nil {
		return nil, ErrUserNotFound
	}
	return found, nil
}

// UpdateUser replaces the stored user with the same ID
func (s *Store) UpdateUser(user *User) error {
	return s.mutate(func(d *dataset) error {
		for i, u := range d.Users {
			if u.ID == user.ID {
				cp := *user
				cp.UpdatedAt = time.Now()
				d.Users[i] = &cp
				return nil
			}
		}
		return ErrUserNotFound
	})
}

// ListUsers returns all users ordered by creation time, newest first
func (s *Store) ListUsers() []*User {
	var out []*User
	s.view(func(d *dataset) {
		out = make([]*User, 0, len(d.Users))
		for _, u := range d.Users {
			cp := *u
			out = append(out, &cp)
		}
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CountUsers returns total user and admin counts
func (s *Store) CountUsers() (total, admins int) {
	s.view(func(d *dataset) {
		total = len(d.Users)
		for _, u := range d.Users {
			if u.Role == constants.RoleAdmin {
				admins++
			}
		}
	})
	return total, admins
}
