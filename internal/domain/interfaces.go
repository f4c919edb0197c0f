package domain

import (
	"context"
	"time"

	"github.com/aristath/qsim/internal/quantum"
)

// Detector maps a free-text algorithm description to a template identifier.
// Implementations must be pure and total: unknown descriptions resolve to
// AlgorithmGeneric, never an error. The simulation service accepts an injected
// Detector so callers can swap the default keyword matcher for something
// smarter without touching the core.
type Detector interface {
	Detect(description string) AlgorithmID
}

// Generator builds the circuit for an algorithm family at a given register
// size. Implementations validate the per-family qubit minimum and the global
// ceiling and return *quantum.ParameterError on violation.
type Generator interface {
	Generate(id AlgorithmID, qubits int) (*quantum.Circuit, error)
}

// EvaluationInput carries everything the metrics evaluator consumes after a
// successful engine pass. State and Stats come from the engine; Noise is the
// model the run used (nil for ideal runs).
type EvaluationInput struct {
	Circuit   *quantum.Circuit
	State     *quantum.StateVector
	Noise     *quantum.NoiseModel
	Algorithm AlgorithmID
	Stats     quantum.RunStats
	Elapsed   time.Duration
}

// Evaluator derives quality metrics from a finished run. It never fails: it
// only runs after a successful engine pass, so its input is valid by
// construction. Identity fields (RunID, CreatedAt) are stamped by the caller.
type Evaluator interface {
	Evaluate(in EvaluationInput) *SimulationResult
}

// ResultCache stores finished results by canonical request key. Last write
// wins on concurrent Put; duplicate in-flight computation of the same key is
// tolerated. Clear returns the number of entries dropped.
type ResultCache interface {
	Get(key string) (*SimulationResult, bool)
	Put(key string, result *SimulationResult)
	Clear() int
	Len() int
}

// Simulator runs one simulation request end to end. The context bounds the
// whole run; expiry surfaces as *quantum.TimeoutError with no partial result.
// The sweep processor and the HTTP handlers both program against this
// interface rather than the concrete service.
type Simulator interface {
	Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error)
}
