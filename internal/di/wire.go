// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/database"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// This is the main entry point for dependency injection
// Order of operations:
// 1. Initialize databases and apply schemas
// 2. Initialize services
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	// Step 1: Initialize databases
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	// Step 2: Initialize services
	if err := InitializeServices(container, cfg, log); err != nil {
		// Cleanup databases on error
		container.CircuitsDB.Close()
		container.SettingsDB.Close()
		container.SweepsDB.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}

// Close releases everything the container holds open. Call once at shutdown
// after the server, processor, and jobs have stopped.
func (c *Container) Close() error {
	var firstErr error
	for _, db := range []*database.DB{c.CircuitsDB, c.SettingsDB, c.SweepsDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
