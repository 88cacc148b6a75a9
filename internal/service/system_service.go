package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradepost/internal/config"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
	"github.com/tradepost/internal/system"
)

// systemService implements the SystemService interface
type systemService struct {
	collector *system.Collector
	config    *config.Config
	startedAt time.Time
}

// NewSystemService creates a new system service
func NewSystemService(db *store.Store, cfg *config.Config, logger *slog.Logger) domain.SystemService {
	return &systemService{
		collector: system.NewCollector(db, logger),
		config:    cfg,
		startedAt: time.Now(),
	}
}

// Status reports service uptime plus store and host statistics
func (s *systemService) Status(ctx context.Context) (*domain.Status, error) {
	now := time.Now()
	return &domain.Status{
		Service:   "tradepost",
		Version:   s.config.ServiceVersion,
		UptimeSec: int64(now.Sub(s.startedAt).Seconds()),
		Store:     s.collector.StoreStats(),
		Host:      s.collector.HostStats(),
		Timestamp: now.Unix(),
	}, nil
}
