// Package domain provides core domain models and types.
package domain

import (
	"time"

	"github.com/aristath/qsim/internal/quantum"
)

// AlgorithmID identifies a circuit template family
type AlgorithmID string

const (
	// AlgorithmBell prepares a two-qubit Bell pair
	AlgorithmBell AlgorithmID = "bell"
	// AlgorithmGHZ prepares an n-qubit GHZ state (star topology)
	AlgorithmGHZ AlgorithmID = "ghz"
	// AlgorithmGrover runs Grover search iterations
	AlgorithmGrover AlgorithmID = "grover"
	// AlgorithmDeutschJozsa runs the Deutsch-Jozsa oracle circuit
	AlgorithmDeutschJozsa AlgorithmID = "deutsch-jozsa"
	// AlgorithmTeleportation runs the three-qubit teleportation protocol
	AlgorithmTeleportation AlgorithmID = "teleportation"
	// AlgorithmSuperdense runs superdense coding
	AlgorithmSuperdense AlgorithmID = "superdense"
	// AlgorithmQFT runs the quantum Fourier transform
	AlgorithmQFT AlgorithmID = "qft"
	// AlgorithmShor is the Shor-class family (factoring); templates to generic
	AlgorithmShor AlgorithmID = "shor"
	// AlgorithmGeneric is the fallback template for unrecognized requests
	AlgorithmGeneric AlgorithmID = "generic"
)

// KnownAlgorithms returns every algorithm identifier, in catalog order.
func KnownAlgorithms() []AlgorithmID {
	return []AlgorithmID{
		AlgorithmBell,
		AlgorithmGHZ,
		AlgorithmGrover,
		AlgorithmDeutschJozsa,
		AlgorithmTeleportation,
		AlgorithmSuperdense,
		AlgorithmQFT,
		AlgorithmShor,
		AlgorithmGeneric,
	}
}

// ParseAlgorithmID validates a caller-supplied algorithm identifier.
// The empty string is not a valid identifier; callers that accept free-text
// descriptions should route those through a Detector instead.
func ParseAlgorithmID(s string) (AlgorithmID, bool) {
	id := AlgorithmID(s)
	for _, known := range KnownAlgorithms() {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// SimulationRequest describes one simulation run. Exactly one of Algorithm or
// Description should be set; when both are present the explicit Algorithm wins.
type SimulationRequest struct {
	Algorithm   AlgorithmID         `json:"algorithm,omitempty"`
	Description string              `json:"description,omitempty"`
	Qubits      int                 `json:"qubits"`
	Noise       *quantum.NoiseModel `json:"noise,omitempty"`
	Timeout     time.Duration       `json:"-"`
}

// StateProbability is one basis state of the measured distribution
type StateProbability struct {
	Basis       string  `json:"basis"`
	Index       int     `json:"index"`
	Probability float64 `json:"probability"`
}

// SimulationResult is the terminal, immutable record of one run.
// Fidelity is an approximate quality score derived from probability-sum
// deviation and per-family baselines, not a state-overlap fidelity.
type SimulationResult struct {
	CreatedAt        time.Time           `json:"created_at"`
	RunID            string              `json:"run_id"`
	Algorithm        AlgorithmID         `json:"algorithm"`
	CircuitName      string              `json:"circuit_name"`
	Recommendations  []string            `json:"recommendations"`
	PeakStates       []StateProbability  `json:"peak_states"`
	Probabilities    []StateProbability  `json:"probabilities,omitempty"`
	Noise            *quantum.NoiseModel `json:"noise,omitempty"`
	Qubits           int                 `json:"qubits"`
	Depth            int                 `json:"depth"`
	GateCount        int                 `json:"gate_count"`
	Fidelity         float64             `json:"fidelity"`
	QuantumAdvantage float64             `json:"quantum_advantage"`
	ErrorRate        float64             `json:"error_rate"`
	NoiseResilience  float64             `json:"noise_resilience"`
	Entropy          float64             `json:"entropy"`
	ExecutionTimeMS  float64             `json:"execution_time_ms"`
	Valid            bool                `json:"valid"`
}
