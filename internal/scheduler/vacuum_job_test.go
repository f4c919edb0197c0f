package scheduler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/domain"
	testingpkg "github.com/aristath/qsim/internal/testing"
	"github.com/aristath/qsim/internal/work"
)

func archivedSweep(id string, finished time.Time) *work.SweepStatus {
	return &work.SweepStatus{
		ID:    id,
		State: work.SweepStateCompleted,
		Request: work.SweepRequest{
			Algorithm: domain.AlgorithmBell,
			Parameter: work.SweepDepolarizing,
			Qubits:    2,
			From:      0,
			To:        0.5,
			Steps:     2,
		},
		Completed:  2,
		Total:      2,
		CreatedAt:  finished.Add(-time.Minute),
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
	}
}

func TestVacuumJob_Name(t *testing.T) {
	job := NewVacuumJob(nil, nil, 0, zerolog.Nop())
	assert.Equal(t, "vacuum", job.Name())
	assert.NotEmpty(t, job.Description())
}

func TestVacuumJob_Run_NoDatabases(t *testing.T) {
	job := NewVacuumJob(nil, nil, 0, zerolog.Nop())
	assert.NoError(t, job.Run()) // Should handle nil databases gracefully
}

func TestVacuumJob_Run_PrunesExpiredSweeps(t *testing.T) {
	db, cleanup := testingpkg.NewTestDBWithSchema(t, "sweeps", work.SweepsSchema)
	t.Cleanup(cleanup)

	archive := work.NewArchive(db.Conn(), zerolog.Nop())
	now := time.Now().UTC()
	require.NoError(t, archive.Save(archivedSweep("old", now.AddDate(0, 0, -40))))
	require.NoError(t, archive.Save(archivedSweep("fresh", now)))

	job := NewVacuumJob(map[string]*database.DB{"sweeps": db}, archive, 30*24*time.Hour, zerolog.Nop())
	require.NoError(t, job.Run())

	count, err := archive.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := archive.Get("fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestVacuumJob_Run_ZeroRetentionKeepsArchive(t *testing.T) {
	db, cleanup := testingpkg.NewTestDBWithSchema(t, "sweeps", work.SweepsSchema)
	t.Cleanup(cleanup)

	archive := work.NewArchive(db.Conn(), zerolog.Nop())
	require.NoError(t, archive.Save(archivedSweep("old", time.Now().UTC().AddDate(0, -6, 0))))

	job := NewVacuumJob(map[string]*database.DB{"sweeps": db}, archive, 0, zerolog.Nop())
	require.NoError(t, job.Run())

	count, err := archive.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
