package store

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/tradepost/internal/constants"
)

// seedFile is the YAML layout of an optional bootstrap file applied when the
// store file is created for the first time
type seedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
	Listings []struct {
		Seller      string `yaml:"seller"` // username of the owning seed user
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		PriceCents  int64  `yaml:"price_cents"`
		Currency    string `yaml:"currency"`
		Category    string `yaml:"category"`
		Status      string `yaml:"status"`
	} `yaml:"listings"`
	Settings *struct {
		RegistrationOpen   *bool `yaml:"registration_open"`
		ListingAutoApprove *bool `yaml:"listing_auto_approve"`
	} `yaml:"settings"`
}

// applySeed populates a fresh dataset from a YAML seed file. Passwords are
// hashed at load time. Callers own locking; this only runs from Open before
// the store is shared.
func (s *Store) applySeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	byUsername := make(map[string]*User)
	for _, su := range seed.Users {
		if su.Username == "" {
			return fmt.Errorf("seed user without username")
		}
		hash := ""
		if su.Password != "" {
			h, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash seed password for %s: %w", su.Username, err)
			}
			hash = string(h)
		}
		user := NewUser(su.Username, su.Email, hash)
		if su.Role == constants.RoleAdmin {
			user.Role = constants.RoleAdmin
		}
		s.data.Users = append(s.data.Users, user)
		byUsername[su.Username] = user
	}

	for _, sl := range seed.Listings {
		seller, ok := byUsername[sl.Seller]
		if !ok {
			return fmt.Errorf("seed listing %q references unknown seller %q", sl.Title, sl.Seller)
		}
		listing := NewListing(seller.ID, sl.Title, sl.Description, sl.PriceCents, sl.Currency, sl.Category)
		if sl.Status != "" {
			listing.Status = sl.Status
		}
		s.data.Listings = append(s.data.Listings, listing)
	}

	if seed.Settings != nil {
		if seed.Settings.RegistrationOpen != nil {
			s.data.Settings.RegistrationOpen = *seed.Settings.RegistrationOpen
		}
		if seed.Settings.ListingAutoApprove != nil {
			s.data.Settings.ListingAutoApprove = *seed.Settings.ListingAutoApprove
		}
		s.data.Settings.UpdatedAt = time.Now()
	}

	return nil
}
