package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store is the single-file JSON database. All mutations run as a
// read-modify-write cycle under the write lock, and every save goes through
// a temp file followed by an atomic rename so the file on disk is always a
// complete document.
type Store struct {
	mu   sync.RWMutex
	path string
	data *dataset
}

// dataset is the in-memory image of the store file
type dataset struct {
	Users    []*User
	Listings []*Listing
	Settings *Settings
	SavedAt  time.Time
}

// diskUser is the on-disk shape of a user. It exists because User hides the
// password hash from JSON, but the store file must keep it.
type diskUser struct {
	ID           string    `json:"id"`
	AuthID       string    `json:"auth_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// fileData is the serialized layout of the store file
type fileData struct {
	Users    []*diskUser `json:"users"`
	Listings []*Listing  `json:"listings"`
	Settings *Settings   `json:"settings"`
	SavedAt  time.Time   `json:"saved_at"`
}

// Open loads the store file at path, creating it (and its directory) when
// missing. seedPath may name an optional YAML seed applied to a fresh store.
func Open(path, seedPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fd fileData
		if err := json.Unmarshal(raw, &fd); err != nil {
			return nil, fmt.Errorf("decode store file %s: %w", path, err)
		}
		s.data = fd.toDataset()
	case os.IsNotExist(err):
		s.data = &dataset{Settings: NewSettings()}
		if seedPath != "" {
			if err := s.applySeed(seedPath); err != nil {
				return nil, fmt.Errorf("apply seed %s: %w", seedPath, err)
			}
		}
		if err := s.save(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read store file %s: %w", path, err)
	}

	if s.data.Settings == nil {
		s.data.Settings = NewSettings()
	}

	return s, nil
}

// Path returns the store file path
func (s *Store) Path() string {
	return s.path
}

func (fd *fileData) toDataset() *dataset {
	d := &dataset{
		Listings: fd.Listings,
		Settings: fd.Settings,
		SavedAt:  fd.SavedAt,
	}
	for _, du := range fd.Users {
		d.Users = append(d.Users, &User{
			ID:           du.ID,
			AuthID:       du.AuthID,
			Username:     du.Username,
			Email:        du.Email,
			PasswordHash: du.PasswordHash,
			Role:         du.Role,
			Provider:     du.Provider,
			CreatedAt:    du.CreatedAt,
			UpdatedAt:    du.UpdatedAt,
		})
	}
	return d
}

func (d *dataset) toFileData() *fileData {
	fd := &fileData{
		Listings: d.Listings,
		Settings: d.Settings,
		SavedAt:  time.Now(),
	}
	for _, u := range d.Users {
		fd.Users = append(fd.Users, &diskUser{
			ID:           u.ID,
			AuthID:       u.AuthID,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			Provider:     u.Provider,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}
	return fd
}

// save writes the dataset to disk. Callers must hold the write lock.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data.toFileData(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tradepost-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// mutate runs fn under the write lock and persists the dataset when fn
// succeeds. The dataset is never saved half-mutated: fn errors abort the
// write, and a failed save rolls the in-memory dataset back so memory and
// disk never diverge.
func (s *Store) mutate(fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.data.clone()
	if err := fn(s.data); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		s.data = prev
		return err
	}
	return nil
}

// clone copies the dataset's slices and settings. Mutators replace records
// with fresh copies rather than editing them in place, so sharing the record
// pointers is safe.
func (d *dataset) clone() *dataset {
	cp := *d
	cp.Users = append([]*User(nil), d.Users...)
	cp.Listings = append([]*Listing(nil), d.Listings...)
	if d.Settings != nil {
		settings := *d.Settings
		cp.Settings = &settings
	}
	return &cp
}

// view runs fn under the read lock
func (s *Store) view(fn func(d *dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// GetSettings returns the site settings
func (s *Store) GetSettings() *Settings {
	var out Settings
	s.view(func(d *dataset) {
		out = *d.Settings
	})
	return &out
}

// UpdateSettings replaces the site settings
func (s *Store) UpdateSettings(settings *Settings) error {
	return s.mutate(func(d *dataset) error {
		cp := *settings
		cp.UpdatedAt = time.Now()
		if cp.ID == "" {
			cp.ID = d.Settings.ID
		}
		d.Settings = &cp
		return nil
	})
}

// FileSize returns the current size of the store file in bytes
func (s *Store) FileSize() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Snapshot copies the current store file into dir under a timestamped name
// and returns the snapshot path
func (s *Store) Snapshot(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	s.mu.RLock()
	raw, err := json.MarshalIndent(s.data.toFileData(), "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := fmt.Sprintf("tradepost-%s.json", time.Now().UTC().Format("20060102T150405.000000000Z"))
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, raw, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return dest, nil
}

// PruneSnapshots removes the oldest snapshots in dir beyond keep
func PruneSnapshots(dir string, keep int) (int, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "tradepost-*.json"))
	if err != nil {
		return 0, err
	}
	if len(entries) <= keep {
		return 0, nil
	}

	// Timestamped names sort chronologically
	sort.Strings(entries)
	stale := entries[:len(entries)-keep]
	removed := 0
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove snapshot %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
