package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/internal/constants"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store.json"), "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "store.json")

	s, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store file was not created: %v", err)
	}
	if s.GetSettings() == nil {
		t.Fatal("fresh store should have default settings")
	}
	if !s.GetSettings().RegistrationOpen {
		t.Error("registration should default to open")
	}
}

func TestUserCRUD(t *testing.T) {
	s := openTestStore(t)

	user := NewUser("alice", "alice@example.com", "hash")
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.GetUserByUsername("ALICE")
	if err != nil {
		t.Fatalf("username lookup should be case-insensitive: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}
	if got.PasswordHash != "hash" {
		t.Error("password hash should survive the store round trip")
	}

	got.Role = constants.RoleAdmin
	if err := s.UpdateUser(got); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	updated, err := s.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !updated.IsAdmin() {
		t.Error("role update was not persisted")
	}
	if !updated.UpdatedAt.After(user.UpdatedAt) && !updated.UpdatedAt.Equal(user.UpdatedAt) {
		t.Error("UpdateUser should bump updated_at")
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateUser(NewUser("alice", "alice@example.com", "h")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := s.CreateUser(NewUser("Alice", "other@example.com", "h")); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username should conflict, got %v", err)
	}
	if err := s.CreateUser(NewUser("bob", "ALICE@example.com", "h")); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate email should conflict, got %v", err)
	}
}

func TestCreateUserWithRole(t *testing.T) {
	s := openTestStore(t)

	pick := func(existing int) string {
		if existing == 0 {
			return constants.RoleAdmin
		}
		return constants.RoleUser
	}

	first := NewUser("first", "first@example.com", "h")
	if err := s.CreateUserWithRole(first, pick); err != nil {
		t.Fatalf("CreateUserWithRole failed: %v", err)
	}
	if !first.IsAdmin() {
		t.Error("first user should get the picked admin role")
	}

	second := NewUser("second", "second@example.com", "h")
	if err := s.CreateUserWithRole(second, pick); err != nil {
		t.Fatalf("CreateUserWithRole failed: %v", err)
	}
	if second.IsAdmin() {
		t.Error("second user should not be admin")
	}

	stored, err := s.GetUser(first.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !stored.IsAdmin() {
		t.Error("picked role was not persisted")
	}
}

func TestMutateRollsBackOnSaveFailure(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "db")
	s, err := Open(filepath.Join(storeDir, "store.json"), "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Removing the directory makes the temp-file save fail
	if err := os.RemoveAll(storeDir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}

	user := NewUser("ghost", "ghost@example.com", "h")
	if err := s.CreateUser(user); err == nil {
		t.Fatal("expected CreateUser to fail when the store cannot be saved")
	}

	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	// The failed insert must not linger in memory or hold the username
	if _, err := s.GetUser(user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("failed insert should be rolled back, got %v", err)
	}
	if err := s.CreateUser(user); err != nil {
		t.Errorf("username should be free after the rollback: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetUser("missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	s, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	user := NewUser("carol", "carol@example.com", "secret-hash")
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	listing := NewListing(user.ID, "Bike", "red bike", 12000, "USD", "sports")
	if err := s.CreateListing(listing); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	reopened, err := Open(path, "")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.GetUser(user.ID)
	if err != nil {
		t.Fatalf("user lost across reopen: %v", err)
	}
	if got.PasswordHash != "secret-hash" {
		t.Error("password hash lost across reopen")
	}
	if _, err := reopened.GetListing(listing.ID); err != nil {
		t.Fatalf("listing lost across reopen: %v", err)
	}
}

func TestListingCRUDAndFilters(t *testing.T) {
	s := openTestStore(t)

	seller := NewUser("dave", "dave@example.com", "h")
	if err := s.CreateUser(seller); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	first := NewListing(seller.ID, "Lamp", "", 2500, "USD", "home")
	first.Status = constants.ListingStatusActive
	second := NewListing(seller.ID, "Couch", "", 90000, "USD", "home")
	third := NewListing("someone-else", "Skis", "", 30000, "USD", "sports")
	third.Status = constants.ListingStatusActive
	for _, l := range []*Listing{first, second, third} {
		if err := s.CreateListing(l); err != nil {
			t.Fatalf("CreateListing failed: %v", err)
		}
	}

	active := s.ListListings(ListingFilter{Status: constants.ListingStatusActive})
	if len(active) != 2 {
		t.Fatalf("expected 2 active listings, got %d", len(active))
	}
	// Newest first
	if active[0].ID != third.ID {
		t.Errorf("expected newest listing first, got %s", active[0].Title)
	}

	mine := s.ListListings(ListingFilter{SellerID: seller.ID})
	if len(mine) != 2 {
		t.Fatalf("expected 2 listings for seller, got %d", len(mine))
	}

	home := s.ListListings(ListingFilter{Category: "home", Status: constants.ListingStatusActive})
	if len(home) != 1 || home[0].ID != first.ID {
		t.Fatalf("unexpected category filter result: %v", home)
	}

	second.Status = constants.ListingStatusRemoved
	if err := s.UpdateListing(second); err != nil {
		t.Fatalf("UpdateListing failed: %v", err)
	}
	total, byStatus := s.CountListings()
	if total != 3 {
		t.Errorf("expected 3 listings, got %d", total)
	}
	if byStatus[constants.ListingStatusRemoved] != 1 {
		t.Errorf("expected 1 removed listing, got %d", byStatus[constants.ListingStatusRemoved])
	}

	if err := s.DeleteListing(first.ID); err != nil {
		t.Fatalf("DeleteListing failed: %v", err)
	}
	if _, err := s.GetListing(first.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound after delete, got %v", err)
	}
	if err := s.DeleteListing(first.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("double delete should not find the listing, got %v", err)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := openTestStore(t)

	user := NewUser("eve", "eve@example.com", "h")
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, _ := s.GetUser(user.ID)
	got.Role = constants.RoleAdmin // mutate the copy only

	again, _ := s.GetUser(user.ID)
	if again.IsAdmin() {
		t.Error("mutating a returned record must not touch the store")
	}
}

func TestSnapshotAndPrune(t *testing.T) {
	s := openTestStore(t)
	snapDir := filepath.Join(t.TempDir(), "snaps")

	var last string
	for i := 0; i < 3; i++ {
		p, err := s.Snapshot(snapDir)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		last = p
	}

	matches, err := filepath.Glob(filepath.Join(snapDir, "tradepost-*.json"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 snapshot files, got %d", len(matches))
	}

	removed, err := PruneSnapshots(snapDir, 1)
	if err != nil {
		t.Fatalf("PruneSnapshots failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 snapshots pruned, got %d", removed)
	}
	remaining, _ := filepath.Glob(filepath.Join(snapDir, "tradepost-*.json"))
	if len(remaining) != 1 || remaining[0] != last {
		t.Errorf("prune should keep only the newest snapshot, left %v", remaining)
	}
}

func TestSeedBootstrap(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.yaml")
	seed := `users:
  - username: admin
    email: admin@example.com
    password: changeme123
    role: admin
  - username: frank
    email: frank@example.com
    password: frank1234
listings:
  - seller: frank
    title: Guitar
    price_cents: 45000
    category: other
    status: active
settings:
  registration_open: false
`
	if err := os.WriteFile(seedPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err := Open(filepath.Join(dir, "store.json"), seedPath)
	if err != nil {
		t.Fatalf("Open with seed failed: %v", err)
	}

	admin, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("seed admin missing: %v", err)
	}
	if !admin.IsAdmin() {
		t.Error("seed admin should hold the admin role")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("changeme123")); err != nil {
		t.Error("seed password should be bcrypt-hashed and verifiable")
	}

	listings := s.ListListings(ListingFilter{Status: constants.ListingStatusActive})
	if len(listings) != 1 || listings[0].Title != "Guitar" {
		t.Fatalf("unexpected seeded listings: %v", listings)
	}
	if s.GetSettings().RegistrationOpen {
		t.Error("seed should have closed registration")
	}

	// Seed applies only to a fresh store
	reopened, err := Open(s.Path(), seedPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	total, _ := reopened.CountUsers()
	if total != 2 {
		t.Errorf("seed must not re-apply on reopen, got %d users", total)
	}
}
