package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/quantum"
)

func runForEvaluation(t *testing.T, algorithm domain.AlgorithmID, spec quantum.CircuitSpec, noise *quantum.NoiseModel) domain.EvaluationInput {
	t.Helper()
	circuit, err := quantum.NewCircuit(spec)
	require.NoError(t, err)
	state, stats, err := quantum.Run(circuit, noise)
	require.NoError(t, err)
	return domain.EvaluationInput{
		Circuit:   circuit,
		State:     state,
		Stats:     stats,
		Noise:     noise,
		Algorithm: algorithm,
		Elapsed:   1500 * time.Microsecond,
	}
}

func bellInput(t *testing.T, noise *quantum.NoiseModel) domain.EvaluationInput {
	t.Helper()
	return runForEvaluation(t, domain.AlgorithmBell, quantum.CircuitSpec{
		Name:   "Bell State",
		Qubits: 2,
		Gates:  []quantum.Gate{quantum.H(0), quantum.CNOT(0, 1)},
	}, noise)
}

func TestEvaluate_IdealBell(t *testing.T) {
	result := NewEvaluator(nil).Evaluate(bellInput(t, nil))

	assert.InDelta(t, 0.98, result.Fidelity, 1e-9, "ideal run keeps the family baseline")
	assert.InDelta(t, 0.02, result.ErrorRate, 1e-9)
	assert.True(t, result.Valid)
	assert.Equal(t, 1.0, result.QuantumAdvantage, "bell has no closed-form speedup")
	assert.Equal(t, 1.0, result.NoiseResilience)
	assert.InDelta(t, 1.0, result.Entropy, 1e-6, "two equal peaks carry one bit")
	assert.Equal(t, 2, result.Depth)
	assert.Equal(t, 2, result.GateCount)
	assert.Equal(t, "Bell State", result.CircuitName)
	assert.InDelta(t, 1.5, result.ExecutionTimeMS, 1e-9)
	assert.Empty(t, result.Recommendations)

	require.Len(t, result.PeakStates, 2)
	assert.Equal(t, "|00>", result.PeakStates[0].Basis)
	assert.Equal(t, "|11>", result.PeakStates[1].Basis)
	assert.InDelta(t, 0.5, result.PeakStates[0].Probability, 1e-4)

	require.Len(t, result.Probabilities, 4, "narrow registers embed the full distribution")
}

func TestEvaluate_ValidityThreshold(t *testing.T) {
	in := bellInput(t, nil)

	strict := NewEvaluator(func() float64 { return 0.99 })
	assert.False(t, strict.Evaluate(in).Valid, "0.98 fidelity fails a 0.99 threshold")

	lax := NewEvaluator(func() float64 { return 0.5 })
	assert.True(t, lax.Evaluate(in).Valid)
}

func TestEvaluate_FidelityReducedByDeviation(t *testing.T) {
	in := bellInput(t, nil)
	in.Stats.ProbabilityDeviation = 0.3

	result := NewEvaluator(nil).Evaluate(in)

	assert.InDelta(t, 0.68, result.Fidelity, 1e-9)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Recommendations[0], "error correction")

	in.Stats.ProbabilityDeviation = 5
	assert.Equal(t, 0.0, NewEvaluator(nil).Evaluate(in).Fidelity, "fidelity clamps at zero")
}

func TestQuantumAdvantage_Formulas(t *testing.T) {
	tests := []struct {
		algorithm domain.AlgorithmID
		qubits    int
		want      float64
	}{
		{algorithm: domain.AlgorithmGrover, qubits: 4, want: 4},
		{algorithm: domain.AlgorithmShor, qubits: 6, want: 8},
		{algorithm: domain.AlgorithmQFT, qubits: 6, want: 4},
		{algorithm: domain.AlgorithmDeutschJozsa, qubits: 5, want: 16},
		{algorithm: domain.AlgorithmGeneric, qubits: 8, want: 4},
		{algorithm: domain.AlgorithmBell, qubits: 1, want: 1},
	}

	for _, tt := range tests {
		got := quantumAdvantage(tt.algorithm, tt.qubits)
		assert.InDelta(t, tt.want, got, 1e-9, "%s with %d qubits", tt.algorithm, tt.qubits)
	}
}

func TestNoiseResilience(t *testing.T) {
	assert.Equal(t, 1.0, noiseResilience(nil))
	assert.Equal(t, 1.0, noiseResilience(&quantum.NoiseModel{}))
	assert.InDelta(t, 0.875, noiseResilience(&quantum.NoiseModel{Depolarizing: 0.5}), 1e-9)
	assert.Equal(t, 0.0, noiseResilience(&quantum.NoiseModel{
		Depolarizing: 1, AmplitudeDamping: 1, PhaseDamping: 1, GateError: 1,
	}))
}

func TestEvaluate_NoisyRunRecommendsHardwareValidation(t *testing.T) {
	noise := &quantum.NoiseModel{Depolarizing: 0.9}
	result := NewEvaluator(nil).Evaluate(bellInput(t, noise))

	assert.InDelta(t, 0.775, result.NoiseResilience, 1e-9)
	require.NotEmpty(t, result.Recommendations)
	found := false
	for _, rec := range result.Recommendations {
		if strings.Contains(rec, "hardware") {
			found = true
		}
	}
	assert.True(t, found, "resilience below 0.8 must surface hardware advice, got %v", result.Recommendations)
	require.NotNil(t, result.Noise)
	assert.Equal(t, 0.9, result.Noise.Depolarizing, "result keeps its own copy of the noise model")
}

func TestEvaluate_WideRegisterOmitsFullDistribution(t *testing.T) {
	in := runForEvaluation(t, domain.AlgorithmGHZ, quantum.CircuitSpec{
		Qubits: 9,
		Gates: []quantum.Gate{
			quantum.H(0),
			quantum.CNOT(0, 1), quantum.CNOT(0, 2), quantum.CNOT(0, 3), quantum.CNOT(0, 4),
			quantum.CNOT(0, 5), quantum.CNOT(0, 6), quantum.CNOT(0, 7), quantum.CNOT(0, 8),
		},
	}, nil)

	result := NewEvaluator(nil).Evaluate(in)

	assert.Nil(t, result.Probabilities, "2^9 states exceed the embedded distribution cap")
	require.Len(t, result.PeakStates, 2, "GHZ has exactly two peaks")
	assert.Equal(t, 0, result.PeakStates[0].Index)
	assert.Equal(t, 511, result.PeakStates[1].Index)
}

func TestEvaluate_PeakStatesCapped(t *testing.T) {
	in := runForEvaluation(t, domain.AlgorithmGeneric, quantum.CircuitSpec{
		Qubits: 4,
		Gates:  []quantum.Gate{quantum.H(0), quantum.H(1), quantum.H(2), quantum.H(3)},
	}, nil)

	result := NewEvaluator(nil).Evaluate(in)

	assert.Len(t, result.PeakStates, 8, "uniform distribution reports only the cap")
	assert.InDelta(t, 4.0, result.Entropy, 1e-4, "uniform over 16 states is 4 bits")
	for i, peak := range result.PeakStates {
		assert.InDelta(t, 0.0625, peak.Probability, 1e-4, "peak %d", i)
	}
}

func TestDistributionEntropy_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, distributionEntropy([]float64{1, 0, 0, 0}), "pure state has zero entropy")
	assert.Equal(t, 0.0, distributionEntropy([]float64{0, 0}), "empty distribution guards against division by zero")
}
