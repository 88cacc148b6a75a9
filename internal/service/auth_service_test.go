package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tradepost/internal/config"
	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
	"github.com/tradepost/internal/validation"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "store.json"), "")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	return db
}

func setupAuthService(t *testing.T, cfg *config.Config) (domain.AuthService, *store.Store) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	db := setupTestStore(t)
	return NewAuthService(db, cfg, slog.Default()), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db := setupAuthService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunterhunterh",
	})
	if err == nil {
		t.Fatal("password without digit should be rejected")
	}

	user, err = svc.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22secret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "hunter22secret" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	ok, err := svc.CheckCredentials(ctx, "alice", "hunter22secret")
	if err != nil || !ok {
		t.Errorf("expected successful login, ok=%v err=%v", ok, err)
	}
	ok, err = svc.CheckCredentials(ctx, "alice", "wrong-password")
	if err != nil || ok {
		t.Errorf("wrong password must fail, ok=%v err=%v", ok, err)
	}
	ok, err = svc.CheckCredentials(ctx, "nobody", "hunter22secret")
	if err != nil || ok {
		t.Errorf("unknown user must fail the same way, ok=%v err=%v", ok, err)
	}

	stored, err := db.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("registered user missing from store: %v", err)
	}
	if !stored.IsAdmin() {
		t.Error("first registered user should be an admin")
	}
}

func TestRegisterSecondUserIsNotAdmin(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{Username: "first", Email: "f@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	second, err := svc.Register(ctx, domain.RegisterRequest{Username: "second", Email: "s@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.IsAdmin() {
		t.Error("second user should not be an admin")
	}
}

func TestRegisterAdminWhitelist(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.AdminUsers = []string{"Boss"}
	svc, _ := setupAuthService(t, cfg)
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{Username: "first", Email: "f@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	boss, err := svc.Register(ctx, domain.RegisterRequest{Username: "boss", Email: "b@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !boss.IsAdmin() {
		t.Error("whitelisted username should be an admin regardless of order")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	ctx := context.Background()

	req := domain.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password1"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterClosed(t *testing.T) {
	svc, db := setupAuthService(t, nil)
	ctx := context.Background()

	settings := db.GetSettings()
	settings.RegistrationOpen = false
	if err := db.UpdateSettings(settings); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	_, err := svc.Register(ctx, domain.RegisterRequest{Username: "late", Email: "l@example.com", Password: "password1"})
	if !errors.Is(err, domain.ErrRegistrationClosed) {
		t.Errorf("expected ErrRegistrationClosed, got %v", err)
	}
}

func TestEnsureOAuthUser(t *testing.T) {
	svc, db := setupAuthService(t, nil)
	ctx := context.Background()

	user, err := svc.EnsureOAuthUser(ctx, "google_abc123", "Jane Doe", constants.ProviderGoogle)
	if err != nil {
		t.Fatalf("EnsureOAuthUser failed: %v", err)
	}
	if user.Provider != constants.ProviderGoogle {
		t.Errorf("expected google provider, got %s", user.Provider)
	}
	if user.AuthID != "google_abc123" {
		t.Errorf("auth ID not recorded: %s", user.AuthID)
	}
	if !user.IsAdmin() {
		t.Error("first user via oauth should still be the bootstrap admin")
	}

	again, err := svc.EnsureOAuthUser(ctx, "google_abc123", "Jane Doe", constants.ProviderGoogle)
	if err != nil {
		t.Fatalf("second EnsureOAuthUser failed: %v", err)
	}
	if again.ID != user.ID {
		t.Error("repeated oauth logins must map to the same user")
	}
	if total, _ := db.CountUsers(); total != 1 {
		t.Errorf("expected 1 user, got %d", total)
	}
}

func TestEnsureOAuthUserUsernameCollision(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{Username: "janedoe", Email: "j@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.EnsureOAuthUser(ctx, "google_xyz", "Jane@Doe!", constants.ProviderGoogle)
	if err != nil {
		t.Fatalf("EnsureOAuthUser failed: %v", err)
	}
	if user.Username == "janedoe" {
		t.Error("oauth user must not steal an existing username")
	}
}

func TestEnsureOAuthUserPunctuatedName(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	ctx := context.Background()

	// Display names like "_bob" used to trap the username derivation in an
	// endless candidate loop; guard with a timeout so a regression fails
	// instead of hanging the suite.
	done := make(chan *store.User, 1)
	go func() {
		user, err := svc.EnsureOAuthUser(ctx, "google_punct", "_bob", constants.ProviderGoogle)
		if err != nil {
			t.Errorf("EnsureOAuthUser failed: %v", err)
		}
		done <- user
	}()

	select {
	case user := <-done:
		if user != nil {
			if err := validation.ValidateUsername(user.Username); err != nil {
				t.Errorf("derived username %q is invalid: %v", user.Username, err)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("EnsureOAuthUser did not finish for a punctuated display name")
	}

	// Names with nothing usable fall back to a generic handle
	user, err := svc.EnsureOAuthUser(ctx, "google_seps", "__--", constants.ProviderGoogle)
	if err != nil {
		t.Fatalf("EnsureOAuthUser failed: %v", err)
	}
	if !strings.HasPrefix(user.Username, "seller") {
		t.Errorf("expected a seller fallback username, got %q", user.Username)
	}
}

func TestConcurrentRegistrationBootstrapsOneAdmin(t *testing.T) {
	svc, db := setupAuthService(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Register(ctx, domain.RegisterRequest{
				Username: fmt.Sprintf("racer%d", n),
				Email:    fmt.Sprintf("racer%d@example.com", n),
				Password: "password1",
			})
			if err != nil {
				t.Errorf("Register failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	total, admins := db.CountUsers()
	if total != 8 {
		t.Fatalf("expected 8 users, got %d", total)
	}
	if admins != 1 {
		t.Errorf("expected exactly one bootstrap admin, got %d", admins)
	}
}

func TestResolveUserBackfillsAuthID(t *testing.T) {
	svc, db := setupAuthService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resolved, err := svc.ResolveUser(ctx, "local_deadbeef", "alice")
	if err != nil {
		t.Fatalf("ResolveUser failed: %v", err)
	}
	if resolved.Username != "alice" {
		t.Errorf("resolved wrong user: %s", resolved.Username)
	}

	stored, _ := db.GetUserByAuthID("local_deadbeef")
	if stored == nil || stored.Username != "alice" {
		t.Error("auth ID should be backfilled after first resolve")
	}

	if _, err := svc.ResolveUser(ctx, "google_unknown", "whoever"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown oauth identity should not resolve, got %v", err)
	}
}
