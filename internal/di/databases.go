// Package di provides dependency injection for database connections.
package di

import (
	"database/sql"
	"fmt"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/modules/circuits"
	"github.com/aristath/qsim/internal/modules/settings"
	"github.com/aristath/qsim/internal/work"
	"github.com/rs/zerolog"
)

// InitializeDatabases initializes all 3 databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. circuits.db - Circuit library (saved circuit definitions)
	circuitsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/circuits.db",
		Profile: database.ProfileStandard,
		Name:    "circuits",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize circuits database: %w", err)
	}
	container.CircuitsDB = circuitsDB

	// 2. settings.db - Application configuration (runtime settings)
	settingsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/settings.db",
		Profile: database.ProfileStandard,
		Name:    "settings",
	})
	if err != nil {
		circuitsDB.Close()
		return nil, fmt.Errorf("failed to initialize settings database: %w", err)
	}
	container.SettingsDB = settingsDB

	// 3. sweeps.db - Sweep archive (completed parameter sweep results)
	sweepsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/sweeps.db",
		Profile: database.ProfileCache, // Maximum speed, losing a sweep only costs a re-run
		Name:    "sweeps",
	})
	if err != nil {
		circuitsDB.Close()
		settingsDB.Close()
		return nil, fmt.Errorf("failed to initialize sweeps database: %w", err)
	}
	container.SweepsDB = sweepsDB

	// Apply schemas (each module owns its own schema)
	schemas := []struct {
		name string
		db   *database.DB
		init func(*sql.DB) error
	}{
		{"circuits", circuitsDB, circuits.InitSchema},
		{"settings", settingsDB, settings.InitSchema},
		{"sweeps", sweepsDB, work.InitSchema},
	}
	for _, s := range schemas {
		if err := s.init(s.db.Conn()); err != nil {
			circuitsDB.Close()
			settingsDB.Close()
			sweepsDB.Close()
			return nil, fmt.Errorf("failed to apply %s schema: %w", s.name, err)
		}
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Msg("All databases initialized successfully")

	return container, nil
}
