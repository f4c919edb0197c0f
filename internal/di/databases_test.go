package di

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/qsim/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDatabases(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.CircuitsDB)
	assert.NotNil(t, container.SettingsDB)
	assert.NotNil(t, container.SweepsDB)

	assert.FileExists(t, filepath.Join(cfg.DataDir, "circuits.db"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "settings.db"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "sweeps.db"))
}

func TestInitializeDatabases_AppliesSchemas(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	// Each module's table exists and is queryable right after wiring
	var count int
	require.NoError(t, container.CircuitsDB.Conn().QueryRow("SELECT COUNT(*) FROM circuits").Scan(&count))
	require.NoError(t, container.SettingsDB.Conn().QueryRow("SELECT COUNT(*) FROM settings").Scan(&count))
	require.NoError(t, container.SweepsDB.Conn().QueryRow("SELECT COUNT(*) FROM sweeps").Scan(&count))
}

func TestInitializeDatabases_InvalidDataDir(t *testing.T) {
	// A regular file where the data directory should be makes directory
	// creation fail regardless of permissions
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	container, err := InitializeDatabases(&config.Config{DataDir: blocker}, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, container)
}
