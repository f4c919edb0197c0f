package settings

import "database/sql"

// SettingsSchema defines the settings table.
// Values are stored as strings and converted by the repository's typed getters.
const SettingsSchema = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    description TEXT,
    updated_at INTEGER NOT NULL DEFAULT 0
);
`

// InitSchema creates the settings table if it does not exist
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(SettingsSchema)
	return err
}
