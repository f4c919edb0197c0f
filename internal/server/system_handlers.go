// Package server provides system monitoring and operations handlers.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/modules/simulation"
	"github.com/aristath/qsim/internal/scheduler"
	"github.com/aristath/qsim/internal/work"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	databases   map[string]*database.DB
	cache       *simulation.ResultCache
	archive     *work.Archive
	scheduler   *scheduler.Scheduler
	startupTime time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases map[string]*database.DB,
	cache *simulation.ResultCache,
	archive *work.Archive,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system").Logger(),
		dataDir:     dataDir,
		databases:   databases,
		cache:       cache,
		archive:     archive,
		scheduler:   sched,
		startupTime: time.Now(),
	}
}

// DBStatus describes one database in the status response
type DBStatus struct {
	Error     string  `json:"error,omitempty"`
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
	Healthy   bool    `json:"healthy"`
}

// SystemStatusResponse is the full snapshot served at /api/system/status
type SystemStatusResponse struct {
	Databases      map[string]DBStatus   `json:"databases"`
	Status         string                `json:"status"`
	Jobs           []scheduler.JobReport `json:"jobs"`
	UptimeSeconds  float64               `json:"uptime_seconds"`
	CPUPercent     float64               `json:"cpu_percent"`
	MemoryPercent  float64               `json:"memory_percent"`
	Goroutines     int                   `json:"goroutines"`
	CacheEntries   int                   `json:"cache_entries"`
	ArchivedSweeps int                   `json:"archived_sweeps"`
}

// HandleSystemStatus returns comprehensive system status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()

	status := "healthy"
	databases := make(map[string]DBStatus, len(h.databases))
	for name, db := range h.databases {
		dbStatus := DBStatus{Healthy: true}
		if err := db.HealthCheck(r.Context()); err != nil {
			dbStatus.Healthy = false
			dbStatus.Error = err.Error()
			status = "degraded"
		}
		if stats, err := db.GetStats(); err == nil {
			dbStatus.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			dbStatus.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
		}
		databases[name] = dbStatus
	}

	cacheEntries := 0
	if h.cache != nil {
		cacheEntries = h.cache.Len()
	}

	archivedSweeps := 0
	if h.archive != nil {
		if n, err := h.archive.Count(); err == nil {
			archivedSweeps = n
		} else {
			h.log.Warn().Err(err).Msg("Failed to count archived sweeps")
		}
	}

	var jobs []scheduler.JobReport
	if h.scheduler != nil {
		jobs = h.scheduler.Health()
	}

	response := SystemStatusResponse{
		Status:         status,
		UptimeSeconds:  time.Since(h.startupTime).Seconds(),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Goroutines:     runtime.NumGoroutine(),
		CacheEntries:   cacheEntries,
		ArchivedSweeps: archivedSweeps,
		Databases:      databases,
		Jobs:           jobs,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// DatabaseStatsResponse reports per-database storage details
type DatabaseStatsResponse struct {
	Databases   map[string]DatabaseStats `json:"databases"`
	TotalSizeMB float64                  `json:"total_size_mb"`
	LastChecked string                   `json:"last_checked"`
}

// DatabaseStats is the storage detail for one database file
type DatabaseStats struct {
	Path          string  `json:"path"`
	SizeMB        float64 `json:"size_mb"`
	WALSizeMB     float64 `json:"wal_size_mb"`
	PageCount     int64   `json:"page_count"`
	PageSize      int64   `json:"page_size"`
	FreelistCount int64   `json:"freelist_count"`
}

// HandleDatabaseStats returns database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	databases := make(map[string]DatabaseStats, len(h.databases))
	totalSizeMB := 0.0

	for name, db := range h.databases {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			continue
		}

		sizeMB := float64(stats.SizeBytes) / 1024 / 1024
		totalSizeMB += sizeMB

		databases[name] = DatabaseStats{
			Path:          db.Path(),
			SizeMB:        sizeMB,
			WALSizeMB:     float64(stats.WALSizeBytes) / 1024 / 1024,
			PageCount:     stats.PageCount,
			PageSize:      stats.PageSize,
			FreelistCount: stats.FreelistCount,
		}
	}

	response := DatabaseStatsResponse{
		Databases:   databases,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// JobsStatusResponse lists every scheduled job with its run reports
type JobsStatusResponse struct {
	Jobs      []scheduler.JobReport `json:"jobs"`
	TotalJobs int                   `json:"total_jobs"`
}

// HandleJobsStatus returns scheduled job reports
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting jobs status")

	var jobs []scheduler.JobReport
	if h.scheduler != nil {
		jobs = h.scheduler.Health()
	}

	response := JobsStatusResponse{
		TotalJobs: len(jobs),
		Jobs:      jobs,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleTriggerJob starts a scheduled job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		h.log.Warn().Msg("Scheduler not available for manual trigger")
		http.Error(w, "Scheduler not available", http.StatusServiceUnavailable)
		return
	}

	name := chi.URLParam(r, "name")
	h.log.Info().Str("job", name).Msg("Manual job trigger requested")

	if err := h.scheduler.Trigger(name); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Job %s triggered successfully", name),
	})
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the status endpoint stays responsive
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
