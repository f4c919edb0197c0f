package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/utils"
)

// CheckpointJob flushes each database's WAL back into the main file and
// warns when a WAL has grown past what passive checkpoints keep up with.
type CheckpointJob struct {
	log zerolog.Logger
	dbs map[string]*database.DB
}

// NewCheckpointJob creates a new WAL checkpoint job
func NewCheckpointJob(dbs map[string]*database.DB, log zerolog.Logger) *CheckpointJob {
	return &CheckpointJob{
		log: log.With().Str("job", "wal_checkpoint").Logger(),
		dbs: dbs,
	}
}

// Name returns the job name
func (j *CheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Description returns the job description
func (j *CheckpointJob) Description() string {
	return "Flush WAL files into the main database files"
}

// Run executes the WAL checkpoint job
func (j *CheckpointJob) Run() error {
	timer := utils.NewTimer("wal_checkpoint", j.log)

	checked := 0
	for name, db := range j.dbs {
		if db == nil {
			continue
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			j.log.Warn().
				Err(err).
				Str("database", name).
				Msg("Failed to checkpoint WAL")
			continue
		}

		if frames > 1000 {
			j.log.Warn().
				Str("database", name).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, a full checkpoint may be needed")
		} else {
			j.log.Debug().
				Str("database", name).
				Int("wal_frames", frames).
				Msg("WAL checkpoint OK")
		}

		checked++
	}

	timer.Stop()

	j.log.Info().
		Int("checked", checked).
		Msg("WAL checkpoint completed")

	return nil
}
