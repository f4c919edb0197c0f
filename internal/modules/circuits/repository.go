package circuits

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/utils"
)

// StoredCircuit is one saved circuit definition. Only definitions are
// persisted; simulation results live in the in-memory cache.
type StoredCircuit struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Algorithm   string    `json:"algorithm"`
	Description string    `json:"description,omitempty"`
	QASM        string    `json:"qasm"`
	Tags        []string  `json:"tags,omitempty"`
	ID          int64     `json:"id"`
	Qubits      int       `json:"qubits"`
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Algorithm string
	Tag       string
}

// Repository handles circuit library database operations.
// Tags are stored as a comma-separated string and parsed on the way out.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a circuit library repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "circuits").Logger(),
	}
}

// Save inserts a new circuit (ID zero) or updates an existing one. The
// returned id is the stored row id.
func (r *Repository) Save(c *StoredCircuit) (int64, error) {
	now := time.Now().Unix()
	tags := strings.Join(c.Tags, ",")

	if c.ID == 0 {
		res, err := r.db.Exec(`
			INSERT INTO circuits (name, algorithm, qubits, description, tags, qasm, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.Name, c.Algorithm, c.Qubits, c.Description, tags, c.QASM, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to save circuit %s: %w", c.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read circuit id: %w", err)
		}
		r.log.Debug().Int64("id", id).Str("name", c.Name).Msg("Circuit saved")
		return id, nil
	}

	_, err := r.db.Exec(`
		UPDATE circuits
		SET name = ?, algorithm = ?, qubits = ?, description = ?, tags = ?, qasm = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Algorithm, c.Qubits, c.Description, tags, c.QASM, now, c.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update circuit %d: %w", c.ID, err)
	}
	return c.ID, nil
}

// Get retrieves a circuit by id. Returns nil if it doesn't exist (not an
// error).
func (r *Repository) Get(id int64) (*StoredCircuit, error) {
	row := r.db.QueryRow(`
		SELECT id, name, algorithm, qubits, description, tags, qasm, created_at, updated_at
		FROM circuits WHERE id = ?
	`, id)

	c, err := scanCircuit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circuit %d: %w", id, err)
	}
	return c, nil
}

// List returns circuits matching the filter, newest first.
func (r *Repository) List(filter ListFilter) ([]StoredCircuit, error) {
	query := `
		SELECT id, name, algorithm, qubits, description, tags, qasm, created_at, updated_at
		FROM circuits
	`
	var args []interface{}
	if filter.Algorithm != "" {
		query += " WHERE algorithm = ?"
		args = append(args, filter.Algorithm)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list circuits: %w", err)
	}
	defer rows.Close()

	var out []StoredCircuit
	for rows.Next() {
		c, err := scanCircuit(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan circuit row")
			continue
		}
		if filter.Tag != "" && !hasTag(c.Tags, filter.Tag) {
			continue
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating circuits: %w", err)
	}
	return out, nil
}

// Delete removes a circuit. Reports whether a row existed.
func (r *Repository) Delete(id int64) (bool, error) {
	res, err := r.db.Exec("DELETE FROM circuits WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete circuit %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the number of stored circuits.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM circuits").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count circuits: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCircuit(row rowScanner) (*StoredCircuit, error) {
	var (
		c          StoredCircuit
		desc, tags sql.NullString
		created    int64
		updated    int64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Algorithm, &c.Qubits, &desc, &tags, &c.QASM, &created, &updated)
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.Tags = utils.ParseCSV(tags.String)
	c.CreatedAt = time.Unix(created, 0).UTC()
	c.UpdatedAt = time.Unix(updated, 0).UTC()
	return &c, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
