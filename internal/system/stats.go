package system

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
)

// Collector gathers host and store statistics for the status endpoint
type Collector struct {
	db     *store.Store
	logger *slog.Logger
}

// NewCollector creates a stats collector
func NewCollector(db *store.Store, logger *slog.Logger) *Collector {
	return &Collector{db: db, logger: logger}
}

// StoreStats summarizes the data store contents
func (c *Collector) StoreStats() domain.StoreStats {
	users, admins := c.db.CountUsers()
	listings, byStatus := c.db.CountListings()
	return domain.StoreStats{
		Users:           users,
		Admins:          admins,
		Listings:        listings,
		ListingsByState: byStatus,
		FileSizeBytes:   c.db.FileSize(),
	}
}

// HostStats reports host resource usage via gopsutil. Failures of
// individual probes leave zero values rather than failing the whole report.
func (c *Collector) HostStats() domain.HostStats {
	stats := domain.HostStats{
		CPUCores: runtime.NumCPU(),
		DiskPath: filepath.Dir(c.db.Path()),
	}

	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	} else if err != nil {
		c.logger.Warn("cpu stats unavailable", "error", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemTotal = vm.Total
		stats.MemUsed = vm.Used
		stats.MemPercent = vm.UsedPercent
	} else {
		c.logger.Warn("memory stats unavailable", "error", err)
	}

	if du, err := disk.Usage(stats.DiskPath); err == nil {
		stats.DiskTotal = du.Total
		stats.DiskUsed = du.Used
		stats.DiskPercent = du.UsedPercent
	} else {
		c.logger.Warn("disk stats unavailable", "path", stats.DiskPath, "error", err)
	}

	return stats
}
