// Package simulation runs circuits end to end: algorithm resolution, circuit
// generation, state-vector execution, metrics evaluation and result caching.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/circuits"
	"github.com/aristath/qsim/internal/modules/settings"
	"github.com/aristath/qsim/internal/quantum"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultWorkers bounds concurrent engine passes when no worker count is configured
const DefaultWorkers = 4

// headroomFactor scales the raw amplitude-buffer size to cover the derived
// probability buffers a run also allocates.
const headroomFactor = 2

// ErrShutdown is returned by Simulate after Shutdown has been called.
var ErrShutdown = errors.New("simulation service is shut down")

// Service runs simulation requests end to end and implements domain.Simulator.
// It owns the result cache and a bounded worker pool: every engine pass
// occupies one pool slot, so a burst of wide-register requests degrades to
// queueing instead of exhausting the host.
type Service struct {
	generator    *circuits.Generator
	detector     domain.Detector
	evaluator    domain.Evaluator
	cache        *ResultCache
	settings     *settings.Service
	eventManager *events.Manager
	workers      chan struct{}
	closed       chan struct{}
	closeOnce    sync.Once
	log          zerolog.Logger
}

// New creates a simulation service with its own result cache and worker pool.
// workers at or below zero falls back to DefaultWorkers.
func New(
	generator *circuits.Generator,
	detector domain.Detector,
	evaluator domain.Evaluator,
	settingsService *settings.Service,
	eventManager *events.Manager,
	workers int,
	log zerolog.Logger,
) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Service{
		generator:    generator,
		detector:     detector,
		evaluator:    evaluator,
		cache:        NewResultCache(log),
		settings:     settingsService,
		eventManager: eventManager,
		workers:      make(chan struct{}, workers),
		closed:       make(chan struct{}),
		log:          log.With().Str("service", "simulation").Logger(),
	}
}

// Cache exposes the service's result cache for the stats and clear endpoints
// and the scheduled cache sweep.
func (s *Service) Cache() *ResultCache {
	return s.cache
}

// Shutdown stops the service from admitting new runs. Runs already admitted
// finish under their own deadlines.
func (s *Service) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.log.Info().Msg("Simulation service shut down")
	})
}

// Simulate executes one request: resolve the algorithm, consult the cache,
// generate the circuit, run the engine on a pool worker under the request's
// deadline, evaluate metrics, cache and return the result.
func (s *Service) Simulate(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResult, error) {
	select {
	case <-s.closed:
		return nil, ErrShutdown
	default:
	}

	runID := uuid.New().String()

	algorithm, err := s.resolveAlgorithm(req)
	if err != nil {
		s.emitFailed(runID, string(req.Algorithm), err)
		return nil, err
	}

	noise, err := s.resolveNoise(req)
	if err != nil {
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}

	s.eventManager.EmitTyped(events.RunStarted, "simulation", &events.RunStartedData{
		RunID:     runID,
		Algorithm: string(algorithm),
		Qubits:    req.Qubits,
	})

	if limit := s.settings.MaxQubits(); req.Qubits > limit {
		err := &quantum.ResourceError{Qubits: req.Qubits, Limit: limit}
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}

	key := CacheKey(algorithm, req.Qubits, noise)
	useCache := s.settings.CacheEnabled()
	if useCache {
		if cached, ok := s.cache.Get(key); ok {
			s.log.Debug().
				Str("run_id", runID).
				Str("algorithm", string(algorithm)).
				Int("qubits", req.Qubits).
				Msg("Serving result from cache")
			s.emitCompleted(runID, cached, true)
			return cached, nil
		}
	}

	if err := s.checkMemoryHeadroom(req.Qubits); err != nil {
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}

	circuit, err := s.generator.Generate(algorithm, req.Qubits)
	if err != nil {
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.settings.DefaultTimeout()
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Refuse outright when the deadline expired before admission.
	if runCtx.Err() != nil {
		err := abandonError(runCtx, timeout)
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}

	// Pool admission counts against the deadline: a saturated pool must not
	// hold a request beyond its budget.
	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-runCtx.Done():
		err := abandonError(runCtx, timeout)
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}

	type engineOutcome struct {
		state *quantum.StateVector
		stats quantum.RunStats
		err   error
	}

	outcomes := make(chan engineOutcome, 1)
	started := time.Now()
	go func() {
		state, stats, err := quantum.Run(circuit, noise)
		outcomes <- engineOutcome{state: state, stats: stats, err: err}
	}()

	var outcome engineOutcome
	select {
	case outcome = <-outcomes:
	case <-runCtx.Done():
		// The engine goroutine finishes into the buffered channel on its own
		// time; the abandoned state never leaves this function.
		err := abandonError(runCtx, timeout)
		s.emitFailed(runID, string(algorithm), err)
		return nil, err
	}
	elapsed := time.Since(started)

	if outcome.err != nil {
		s.emitFailed(runID, string(algorithm), outcome.err)
		return nil, outcome.err
	}

	result := s.evaluator.Evaluate(domain.EvaluationInput{
		Circuit:   circuit,
		State:     outcome.state,
		Noise:     noise,
		Algorithm: algorithm,
		Stats:     outcome.stats,
		Elapsed:   elapsed,
	})
	result.RunID = runID
	result.CreatedAt = time.Now().UTC()

	if useCache {
		s.cache.Put(key, result)
	}

	s.log.Info().
		Str("run_id", runID).
		Str("algorithm", string(algorithm)).
		Int("qubits", result.Qubits).
		Float64("fidelity", result.Fidelity).
		Bool("valid", result.Valid).
		Float64("elapsed_ms", result.ExecutionTimeMS).
		Msg("Simulation completed")

	s.emitCompleted(runID, result, false)
	return result, nil
}

// resolveAlgorithm picks the template family: an explicit identifier wins,
// otherwise the description goes through the detector, which is total and
// falls back to generic.
func (s *Service) resolveAlgorithm(req domain.SimulationRequest) (domain.AlgorithmID, error) {
	if req.Algorithm != "" {
		id, ok := domain.ParseAlgorithmID(string(req.Algorithm))
		if !ok {
			return "", &quantum.ParameterError{
				Param:  "algorithm",
				Value:  string(req.Algorithm),
				Reason: "unknown algorithm identifier",
			}
		}
		return id, nil
	}
	return s.detector.Detect(req.Description), nil
}

// resolveNoise validates an explicit noise model or falls back to the
// configured preset when the request carries none. The model is copied so a
// caller mutating the request afterwards cannot corrupt the cache key.
func (s *Service) resolveNoise(req domain.SimulationRequest) (*quantum.NoiseModel, error) {
	if req.Noise != nil {
		if err := req.Noise.Validate(); err != nil {
			return nil, err
		}
		noise := *req.Noise
		return &noise, nil
	}

	noise, err := s.settings.DefaultNoise()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to resolve noise preset, running ideal")
		return nil, nil
	}
	return noise, nil
}

// checkMemoryHeadroom rejects a request whose 2^n amplitude buffer would not
// fit in available memory. The check runs before any allocation; its rejection
// carries a Detail so callers can tell memory pressure from the hard ceiling.
func (s *Service) checkMemoryHeadroom(qubits int) error {
	stat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read memory statistics, skipping headroom check")
		return nil
	}

	needed := (uint64(16) << uint(qubits)) * headroomFactor
	if needed > stat.Available {
		return &quantum.ResourceError{
			Qubits: qubits,
			Limit:  quantum.MaxQubits,
			Detail: fmt.Sprintf("state buffer needs %d bytes, %d available", needed, stat.Available),
		}
	}
	return nil
}

// abandonError maps an expired run context onto the error taxonomy: deadline
// expiry becomes a TimeoutError, caller cancellation propagates as is.
func abandonError(ctx context.Context, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &quantum.TimeoutError{Timeout: timeout}
	}
	return ctx.Err()
}

func (s *Service) emitCompleted(runID string, result *domain.SimulationResult, cached bool) {
	s.eventManager.EmitTyped(events.RunCompleted, "simulation", &events.RunCompletedData{
		RunID:     runID,
		Algorithm: string(result.Algorithm),
		Qubits:    result.Qubits,
		Fidelity:  result.Fidelity,
		Valid:     result.Valid,
		Cached:    cached,
		ElapsedMS: result.ExecutionTimeMS,
	})
}

func (s *Service) emitFailed(runID, algorithm string, err error) {
	s.log.Warn().
		Err(err).
		Str("run_id", runID).
		Str("algorithm", algorithm).
		Msg("Simulation failed")

	s.eventManager.EmitTyped(events.RunFailed, "simulation", &events.RunFailedData{
		RunID:     runID,
		Algorithm: algorithm,
		Error:     err.Error(),
	})
}
