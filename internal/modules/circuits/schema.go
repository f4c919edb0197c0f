package circuits

import "database/sql"

// CircuitsSchema holds the circuit library table in circuits.db
const CircuitsSchema = `
CREATE TABLE IF NOT EXISTS circuits (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    algorithm TEXT NOT NULL,
    qubits INTEGER NOT NULL,
    description TEXT,
    tags TEXT,
    qasm TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_circuits_algorithm ON circuits(algorithm);
CREATE INDEX IF NOT EXISTS idx_circuits_created ON circuits(created_at);
`

// InitSchema ensures the circuits table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(CircuitsSchema)
	return err
}
