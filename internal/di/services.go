// Package di provides dependency injection for service implementations.
package di

import (
	"fmt"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/analysis"
	"github.com/aristath/qsim/internal/modules/circuits"
	"github.com/aristath/qsim/internal/modules/settings"
	"github.com/aristath/qsim/internal/modules/simulation"
	"github.com/aristath/qsim/internal/work"
	"github.com/rs/zerolog"
)

// InitializeServices creates all services and stores them in the container
// Services are created in dependency order to ensure all dependencies exist
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	// ==========================================
	// STEP 1: Event Bus
	// ==========================================

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)
	log.Info().Msg("Event bus initialized")

	// ==========================================
	// STEP 2: Settings
	// ==========================================

	container.SettingsRepo = settings.NewRepository(container.SettingsDB.Conn(), log)
	container.SettingsService = settings.NewService(container.SettingsRepo, log)
	if err := applySettingOverrides(container.SettingsService, cfg, log); err != nil {
		return fmt.Errorf("failed to apply setting overrides: %w", err)
	}

	// ==========================================
	// STEP 3: Circuits
	// ==========================================

	container.CircuitRepo = circuits.NewRepository(container.CircuitsDB.Conn(), log)
	container.Generator = circuits.NewGenerator()
	container.Detector = circuits.NewKeywordDetector()
	log.Info().Msg("Circuit generator and detector initialized")

	// ==========================================
	// STEP 4: Analysis
	// ==========================================

	// Evaluator reads the fidelity threshold live so settings changes apply
	// without a restart
	container.Evaluator = analysis.NewEvaluator(container.SettingsService.FidelityThreshold)

	// ==========================================
	// STEP 5: Simulation
	// ==========================================

	container.SimulationService = simulation.New(
		container.Generator,
		container.Detector,
		container.Evaluator,
		container.SettingsService,
		container.EventManager,
		cfg.Workers,
		log,
	)
	container.ResultCache = container.SimulationService.Cache()
	log.Info().Int("workers", cfg.Workers).Msg("Simulation service initialized")

	// ==========================================
	// STEP 6: Sweeps
	// ==========================================

	container.SweepArchive = work.NewArchive(container.SweepsDB.Conn(), log)
	container.Processor = work.NewProcessor(
		container.SimulationService,
		container.SettingsService,
		container.EventManager,
		container.SweepArchive,
		log,
	)
	log.Info().Msg("Sweep processor initialized")

	return nil
}

// applySettingOverrides writes environment-provided setting values through to
// the settings store at startup. Zero values leave the stored settings alone.
func applySettingOverrides(svc *settings.Service, cfg *config.Config, log zerolog.Logger) error {
	if cfg.MaxQubits > 0 {
		if err := svc.Set("max_qubits", float64(cfg.MaxQubits)); err != nil {
			return fmt.Errorf("max_qubits: %w", err)
		}
		log.Info().Int("max_qubits", cfg.MaxQubits).Msg("Setting override applied from environment")
	}
	if cfg.DefaultTimeoutMS > 0 {
		if err := svc.Set("default_timeout_ms", cfg.DefaultTimeoutMS); err != nil {
			return fmt.Errorf("default_timeout_ms: %w", err)
		}
		log.Info().Int("default_timeout_ms", cfg.DefaultTimeoutMS).Msg("Setting override applied from environment")
	}
	if cfg.FidelityThreshold > 0 {
		if err := svc.Set("fidelity_threshold", cfg.FidelityThreshold); err != nil {
			return fmt.Errorf("fidelity_threshold: %w", err)
		}
		log.Info().Float64("fidelity_threshold", cfg.FidelityThreshold).Msg("Setting override applied from environment")
	}
	return nil
}
