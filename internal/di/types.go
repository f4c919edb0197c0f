/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the HTTP server for access to services.
 */
package di

import (
	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/analysis"
	"github.com/aristath/qsim/internal/modules/circuits"
	"github.com/aristath/qsim/internal/modules/settings"
	"github.com/aristath/qsim/internal/modules/simulation"
	"github.com/aristath/qsim/internal/work"
)

/**
 * Container holds all dependencies for the application.
 *
 * This is the single source of truth for all service instances.
 * The container is created by Wire() and handed to the HTTP server and jobs.
 *
 * Architecture:
 * - Databases: 3-database architecture (circuits, settings, sweeps)
 * - Events: In-process event bus and the typed emitter built on it
 * - Repositories: Data access layer (settings, circuit library)
 * - Services: Business logic layer (settings, circuit generation, simulation)
 * - Sweeps: Parameter sweep processor and its archive
 */
type Container struct {
	// Databases
	CircuitsDB *database.DB
	SettingsDB *database.DB
	SweepsDB   *database.DB

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Repositories
	SettingsRepo *settings.Repository
	CircuitRepo  *circuits.Repository

	// Services
	SettingsService   *settings.Service
	Generator         *circuits.Generator
	Detector          *circuits.KeywordDetector
	Evaluator         *analysis.Evaluator
	SimulationService *simulation.Service
	ResultCache       *simulation.ResultCache

	// Sweeps
	SweepArchive *work.Archive
	Processor    *work.Processor
}
