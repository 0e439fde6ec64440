// Package monitoring reports host and database resource usage for the
// admin dashboard.
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
	Uptime        string  `json:"uptime"`

	DatabaseStatus    string `json:"database_status"`
	ActiveConnections int    `json:"active_connections"`
	DBSize            string `json:"db_size"`
	ResponseTimeMs    int64  `json:"response_time_ms"`
}

type Collector struct {
	db *pgxpool.Pool
}

func NewCollector(db *pgxpool.Pool) *Collector {
	return &Collector{db: db}
}

// Stats gathers host metrics via gopsutil and database metrics via
// pg_stat_activity. Individual probe failures leave zero values rather
// than failing the whole snapshot.
func (c *Collector) Stats(ctx context.Context) *SystemStats {
	stats := &SystemStats{DatabaseStatus: "unknown"}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}
	if uptime, err := host.Uptime(); err == nil {
		stats.Uptime = formatDuration(time.Duration(uptime) * time.Second)
	}

	c.databaseStats(ctx, stats)
	return stats
}

func (c *Collector) databaseStats(ctx context.Context, stats *SystemStats) {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := c.db.Ping(probeCtx); err != nil {
		stats.DatabaseStatus = "unhealthy"
		stats.ResponseTimeMs = time.Since(start).Milliseconds()
		return
	}
	stats.DatabaseStatus = "healthy"
	stats.ResponseTimeMs = time.Since(start).Milliseconds()

	var active int
	if err := c.db.QueryRow(probeCtx,
		`SELECT count(*) FROM pg_stat_activity WHERE state = 'active'`).Scan(&active); err == nil {
		stats.ActiveConnections = active
	}

	var size int64
	if err := c.db.QueryRow(probeCtx,
		`SELECT pg_database_size(current_database())`).Scan(&size); err == nil {
		stats.DBSize = formatBytes(uint64(size))
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
