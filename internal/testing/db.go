// Package testing provides shared test helpers for the qsim project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/qsim/internal/database"
)

// NewTestDB creates a temporary on-disk SQLite database for testing.
// Returns the database and an idempotent cleanup function. Temporary files
// (rather than :memory:) keep the WAL pragmas and maintenance operations
// behaving like production.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			t.Logf("Warning: Failed to remove temporary database file %s: %v", tmpPath, err)
		}
		_ = os.Remove(tmpPath + "-wal")
		_ = os.Remove(tmpPath + "-shm")
	}
}

// NewTestDBWithSchema creates a test database and applies a schema string.
// Schema ownership lives with the modules (each exports its CREATE TABLE
// constant), so tests compose exactly the schemas they need.
func NewTestDBWithSchema(t *testing.T, name string, schema string) (*database.DB, func()) {
	t.Helper()

	db, cleanup := NewTestDB(t, name)
	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			cleanup()
			t.Fatalf("Failed to apply schema for test database %s: %v", name, err)
		}
	}
	return db, cleanup
}
