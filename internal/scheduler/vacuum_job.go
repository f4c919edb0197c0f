package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/utils"
	"github.com/aristath/qsim/internal/work"
)

// VacuumJob reclaims disk space: archived sweeps past their retention are
// pruned first so the vacuum that follows can return their pages.
type VacuumJob struct {
	log       zerolog.Logger
	dbs       map[string]*database.DB
	archive   *work.Archive
	retention time.Duration
}

// NewVacuumJob creates a new vacuum job. A zero retention disables sweep
// pruning; a nil archive skips it.
func NewVacuumJob(dbs map[string]*database.DB, archive *work.Archive, retention time.Duration, log zerolog.Logger) *VacuumJob {
	return &VacuumJob{
		log:       log.With().Str("job", "vacuum").Logger(),
		dbs:       dbs,
		archive:   archive,
		retention: retention,
	}
}

// Name returns the job name
func (j *VacuumJob) Name() string {
	return "vacuum"
}

// Description returns the job description
func (j *VacuumJob) Description() string {
	return "Prune expired sweep archives and vacuum the databases"
}

// Run executes the vacuum job
func (j *VacuumJob) Run() error {
	timer := utils.NewTimer("vacuum", j.log)

	pruned := int64(0)
	if j.archive != nil && j.retention > 0 {
		var err error
		pruned, err = j.archive.Prune(time.Now().Add(-j.retention))
		if err != nil {
			j.log.Warn().Err(err).Msg("Failed to prune sweep archive")
			pruned = 0
		} else if pruned > 0 {
			j.log.Info().Int64("pruned", pruned).Msg("Expired sweep archives removed")
		}
	}

	var failed []string
	vacuumed := 0
	for name, db := range j.dbs {
		if db == nil {
			continue
		}
		if err := db.Vacuum(); err != nil {
			j.log.Warn().
				Err(err).
				Str("database", name).
				Msg("Vacuum failed")
			failed = append(failed, name)
			continue
		}
		vacuumed++
	}

	timer.StopWithContext(map[string]interface{}{
		"databases": vacuumed,
		"pruned":    pruned,
	})

	if len(failed) > 0 {
		return fmt.Errorf("vacuum failed for: %s", strings.Join(failed, ", "))
	}

	j.log.Info().
		Int("databases", vacuumed).
		Msg("Vacuum completed")

	return nil
}
