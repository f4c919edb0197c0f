package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/events"
)

// memoryDegradedPercent is the used-memory level above which the snapshot
// reports the system as degraded.
const memoryDegradedPercent = 90.0

// HealthSnapshotJob emits a periodic system status pulse so event stream
// consumers see liveness without polling the status endpoint.
type HealthSnapshotJob struct {
	log    zerolog.Logger
	dbs    map[string]*database.DB
	events *events.Manager
}

// NewHealthSnapshotJob creates a new health snapshot job
func NewHealthSnapshotJob(dbs map[string]*database.DB, eventManager *events.Manager, log zerolog.Logger) *HealthSnapshotJob {
	return &HealthSnapshotJob{
		log:    log.With().Str("job", "health_snapshot").Logger(),
		dbs:    dbs,
		events: eventManager,
	}
}

// Name returns the job name
func (j *HealthSnapshotJob) Name() string {
	return "health_snapshot"
}

// Description returns the job description
func (j *HealthSnapshotJob) Description() string {
	return "Emit a periodic system health status event"
}

// Run executes the health snapshot job
func (j *HealthSnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := "healthy"

	for name, db := range j.dbs {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Warn().
				Err(err).
				Str("database", name).
				Msg("Database ping failed")
			status = "degraded"
		}
	}

	if stat, err := mem.VirtualMemory(); err == nil && stat.UsedPercent > memoryDegradedPercent {
		j.log.Warn().
			Float64("used_percent", stat.UsedPercent).
			Msg("Memory usage is high")
		status = "degraded"
	}

	if j.events != nil {
		j.events.EmitTyped(events.SystemStatusChanged, "scheduler", &events.SystemStatusChangedData{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return nil
}
