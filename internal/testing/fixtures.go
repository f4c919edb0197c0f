package testing

import (
	"time"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/quantum"
)

// BellRequest returns the canonical two-qubit Bell request used across tests.
func BellRequest() domain.SimulationRequest {
	return domain.SimulationRequest{
		Algorithm: domain.AlgorithmBell,
		Qubits:    2,
		Timeout:   5 * time.Second,
	}
}

// NoisyBellRequest returns a Bell request with a mild depolarizing channel.
func NoisyBellRequest() domain.SimulationRequest {
	req := BellRequest()
	req.Noise = &quantum.NoiseModel{Depolarizing: 0.1}
	return req
}

// ResultFixture returns a plausible completed result for cache and transport
// tests. Metric values are static; nothing derives them.
func ResultFixture(runID string, algorithm domain.AlgorithmID, qubits int) *domain.SimulationResult {
	return &domain.SimulationResult{
		RunID:            runID,
		Algorithm:        algorithm,
		CircuitName:      "Fixture Circuit",
		Qubits:           qubits,
		Depth:            2,
		GateCount:        2,
		Fidelity:         0.98,
		ErrorRate:        0.02,
		QuantumAdvantage: 1,
		NoiseResilience:  1,
		Entropy:          1,
		Valid:            true,
		ExecutionTimeMS:  0.42,
		PeakStates: []domain.StateProbability{
			{Index: 0, Basis: "|00>", Probability: 0.5},
			{Index: 3, Basis: "|11>", Probability: 0.5},
		},
		Recommendations: []string{},
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}
