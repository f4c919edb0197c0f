// Package main is the entry point for the qsim quantum circuit simulation
// service. The service builds circuits from algorithm templates or plain-text
// descriptions, runs them through a statevector engine under configurable
// noise, evaluates the results, and archives parameter sweeps for later
// retrieval.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/di"
	"github.com/aristath/qsim/internal/scheduler"
	"github.com/aristath/qsim/internal/server"
	"github.com/aristath/qsim/pkg/logger"
)

// main orchestrates the system startup sequence:
// 1. Loads configuration from environment variables
// 2. Initializes the logging system
// 3. Wires all dependencies via DI container (databases, repositories, services)
// 4. Registers maintenance jobs with the scheduler
// 5. Starts the HTTP server and the sweep processor
// 6. Waits for a shutdown signal and performs graceful shutdown
//
// The application uses a 3-database architecture:
// - circuits.db: Saved circuit library
// - settings.db: Runtime-tunable settings
// - sweeps.db: Archived sweep results (rebuildable from re-runs)
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		// This ensures we can log the configuration error even if config loading fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	// Logger uses structured logging (zerolog) with configurable log levels
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting qsim")

	// Wire all dependencies using DI container
	// This initializes databases, repositories, services, and the sweep processor.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Maintenance jobs run on the scheduler. Checkpoint and vacuum cadence
	// comes from the settings store so it can be tuned without a redeploy.
	sched := scheduler.New(container.EventManager, log)
	if err := registerJobs(sched, container, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scheduled jobs")
	}

	// Initialize HTTP server
	// Pass container to server so the handlers can use all services.
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Config:    cfg,
		Container: container,
		Scheduler: sched,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine so the processor and scheduler start concurrently
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Start sweep processor (background parameter sweep execution)
	go container.Processor.Run()
	log.Info().Msg("Sweep processor started")

	sched.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the scheduler first so no new maintenance jobs start, then the
	// sweep processor. A sweep in flight is interrupted and marked failed.
	sched.Stop()

	container.Processor.Stop()
	log.Info().Msg("Sweep processor stopped")

	// Graceful shutdown
	// The HTTP server is given up to 10 seconds to finish in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Simulation workers stop after the server drain so in-flight runs finish
	// under their own deadlines.
	container.SimulationService.Shutdown()

	log.Info().Msg("Server stopped")
}

// registerJobs wires the recurring maintenance jobs:
//   - WAL checkpoints across all databases at the configured cadence
//   - daily vacuum plus sweep archive pruning at the configured hour
//   - scheduled result cache clears, when enabled
//   - a system health snapshot every minute for the event stream
func registerJobs(sched *scheduler.Scheduler, container *di.Container, cfg *config.Config, log zerolog.Logger) error {
	dbs := map[string]*database.DB{
		"circuits": container.CircuitsDB,
		"settings": container.SettingsDB,
		"sweeps":   container.SweepsDB,
	}

	checkpoint := scheduler.NewCheckpointJob(dbs, log)
	checkpointEvery := fmt.Sprintf("@every %dm", int(container.SettingsService.CheckpointInterval().Minutes()))
	if err := sched.AddJob(checkpointEvery, checkpoint); err != nil {
		return err
	}

	vacuum := scheduler.NewVacuumJob(dbs, container.SweepArchive, cfg.SweepRetention(), log)
	vacuumAt := fmt.Sprintf("0 0 %d * * *", container.SettingsService.VacuumHour())
	if err := sched.AddJob(vacuumAt, vacuum); err != nil {
		return err
	}

	if interval := container.SettingsService.CacheClearInterval(); cfg.CacheSweep && interval > 0 {
		cacheClear := scheduler.NewCacheClearJob(container.ResultCache, container.EventManager, log)
		clearEvery := fmt.Sprintf("@every %dh", int(interval.Hours()))
		if err := sched.AddJob(clearEvery, cacheClear); err != nil {
			return err
		}
	}

	health := scheduler.NewHealthSnapshotJob(dbs, container.EventManager, log)
	return sched.AddJob("@every 1m", health)
}
