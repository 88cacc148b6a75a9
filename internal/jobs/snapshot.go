package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tradepost/internal/store"
)

// SnapshotScheduler periodically copies the store file aside and prunes old
// copies, so a corrupted or fat-fingered store can be rolled back by hand
type SnapshotScheduler struct {
	db     *store.Store
	dir    string
	keep   int
	logger *slog.Logger
	cron   *cron.Cron
}

// NewSnapshotScheduler creates a snapshot scheduler. keep bounds how many
// snapshots survive pruning.
func NewSnapshotScheduler(db *store.Store, dir string, keep int, logger *slog.Logger) *SnapshotScheduler {
	return &SnapshotScheduler{
		db:     db,
		dir:    dir,
		keep:   keep,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start registers the snapshot job under the given cron spec (e.g.
// "@every 1h") and runs until ctx is cancelled
func (s *SnapshotScheduler) Start(ctx context.Context, spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("snapshot scheduler started", "spec", spec, "dir", s.dir, "keep", s.keep)

	go func() {
		<-ctx.Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.logger.Info("snapshot scheduler stopped")
	}()

	return nil
}

// RunOnce takes a single snapshot and prunes stale ones
func (s *SnapshotScheduler) RunOnce() {
	path, err := s.db.Snapshot(s.dir)
	if err != nil {
		s.logger.Error("store snapshot failed", "error", err)
		return
	}
	s.logger.Info("store snapshot written", "path", path)

	removed, err := store.PruneSnapshots(s.dir, s.keep)
	if err != nil {
		s.logger.Error("snapshot pruning failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("stale snapshots pruned", "removed", removed)
	}
}
