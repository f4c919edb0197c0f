package work

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// SweepsSchema holds archived sweep snapshots in sweeps.db
const SweepsSchema = `
CREATE TABLE IF NOT EXISTS sweeps (
    id TEXT PRIMARY KEY,
    algorithm TEXT NOT NULL,
    state TEXT NOT NULL,
    snapshot BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sweeps_state ON sweeps(state);
CREATE INDEX IF NOT EXISTS idx_sweeps_finished ON sweeps(finished_at);
`

// InitSchema ensures the sweeps table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(SweepsSchema)
	return err
}

// Archive persists finished sweeps so their summaries survive process
// restarts. Snapshots are stored whole as msgpack blobs; the indexed columns
// exist for pruning and inspection, not for querying point data.
type Archive struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewArchive creates a sweep archive over an open database.
func NewArchive(db *sql.DB, log zerolog.Logger) *Archive {
	return &Archive{
		db:  db,
		log: log.With().Str("repository", "sweeps").Logger(),
	}
}

// Save stores a sweep snapshot. Saving the same id again overwrites the
// previous snapshot.
func (a *Archive) Save(st *SweepStatus) error {
	blob, err := msgpack.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode sweep %s: %w", st.ID, err)
	}

	_, err = a.db.Exec(`
		INSERT OR REPLACE INTO sweeps (id, algorithm, state, snapshot, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, st.ID, string(st.Request.Algorithm), string(st.State), blob, st.CreatedAt.Unix(), st.FinishedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to archive sweep %s: %w", st.ID, err)
	}

	a.log.Debug().Str("sweep_id", st.ID).Str("state", string(st.State)).Msg("Sweep archived")
	return nil
}

// Get retrieves an archived sweep by id. Returns nil if it doesn't exist
// (not an error).
func (a *Archive) Get(id string) (*SweepStatus, error) {
	var blob []byte
	err := a.db.QueryRow("SELECT snapshot FROM sweeps WHERE id = ?", id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep %s: %w", id, err)
	}

	var st SweepStatus
	if err := msgpack.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("failed to decode sweep %s: %w", id, err)
	}
	return &st, nil
}

// Count returns the number of archived sweeps.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM sweeps").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sweeps: %w", err)
	}
	return n, nil
}

// Prune deletes sweeps that finished before the cutoff. Returns how many rows
// were removed.
func (a *Archive) Prune(before time.Time) (int64, error) {
	res, err := a.db.Exec("DELETE FROM sweeps WHERE finished_at < ?", before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sweeps: %w", err)
	}
	return res.RowsAffected()
}
