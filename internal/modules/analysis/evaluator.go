// Package analysis derives quality metrics from finished simulation runs.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/quantum"
)

// DefaultValidityThreshold marks a run valid when fidelity reaches it
const DefaultValidityThreshold = 0.95

// Fidelity baselines per algorithm family. The reported fidelity is the
// family baseline reduced by the probability-sum deviation the engine
// observed, clamped to [0,1]. It approximates run quality; it is not a
// state-overlap fidelity against a reference state.
const (
	baseFidelityBell    = 0.98
	baseFidelityGrover  = 0.92
	baseFidelityQFT     = 0.96
	baseFidelityDefault = 0.95
)

// maxReportedStates caps the probability distribution embedded in a result.
// Registers wider than 8 qubits report peak states only.
const maxReportedStates = 256

// peakStateCount is how many top-probability states a result carries
const peakStateCount = 8

// Evaluator computes SimulationResult metrics from an engine pass.
// It implements domain.Evaluator.
type Evaluator struct {
	threshold func() float64
}

// NewEvaluator creates an evaluator. thresholdFn supplies the validity
// threshold at evaluation time so runtime settings changes take effect without
// rebuilding the service; nil falls back to the default.
func NewEvaluator(thresholdFn func() float64) *Evaluator {
	if thresholdFn == nil {
		thresholdFn = func() float64 { return DefaultValidityThreshold }
	}
	return &Evaluator{threshold: thresholdFn}
}

// Evaluate derives the terminal result record for one run. Identity fields
// (RunID, CreatedAt) are left for the caller to stamp.
func (e *Evaluator) Evaluate(in domain.EvaluationInput) *domain.SimulationResult {
	qubits := in.Circuit.NumQubits()
	probs := in.State.Probabilities()

	fidelity := clamp01(baseFidelity(in.Algorithm) - in.Stats.ProbabilityDeviation)
	fidelity = round4(fidelity)
	resilience := round4(noiseResilience(in.Noise))

	result := &domain.SimulationResult{
		Algorithm:        in.Algorithm,
		CircuitName:      in.Circuit.Name(),
		Qubits:           qubits,
		Depth:            in.Circuit.Depth(),
		GateCount:        in.Circuit.GateCount(),
		Fidelity:         fidelity,
		ErrorRate:        round4(1 - fidelity),
		QuantumAdvantage: round2(quantumAdvantage(in.Algorithm, qubits)),
		NoiseResilience:  resilience,
		Entropy:          round4(distributionEntropy(probs)),
		Valid:            fidelity >= e.threshold(),
		ExecutionTimeMS:  float64(in.Elapsed.Microseconds()) / 1000.0,
		PeakStates:       peakStates(probs, qubits),
		Recommendations:  recommendations(fidelity, resilience),
	}
	if in.Noise != nil {
		noise := *in.Noise
		result.Noise = &noise
	}
	if len(probs) <= maxReportedStates {
		result.Probabilities = fullDistribution(probs, qubits)
	}
	return result
}

// baseFidelity returns the per-family baseline score
func baseFidelity(id domain.AlgorithmID) float64 {
	switch id {
	case domain.AlgorithmBell:
		return baseFidelityBell
	case domain.AlgorithmGrover:
		return baseFidelityGrover
	case domain.AlgorithmQFT:
		return baseFidelityQFT
	default:
		return baseFidelityDefault
	}
}

// quantumAdvantage estimates the illustrative speedup multiplier over a
// classical analog. Closed-form per family; never measured.
func quantumAdvantage(id domain.AlgorithmID, qubits int) float64 {
	n := float64(qubits)
	switch id {
	case domain.AlgorithmGrover:
		return math.Sqrt(math.Pow(2, n))
	case domain.AlgorithmShor:
		return math.Pow(2, n/2)
	case domain.AlgorithmQFT:
		return math.Pow(2, n/3)
	case domain.AlgorithmDeutschJozsa:
		return math.Pow(2, n-1)
	default:
		return math.Max(1, n*0.5)
	}
}

// noiseResilience scores how tolerant the run was to its noise model: 1 minus
// the mean of the four channel parameters. Ideal runs score 1.
func noiseResilience(noise *quantum.NoiseModel) float64 {
	if noise == nil {
		return 1.0
	}
	mean := (noise.Depolarizing + noise.AmplitudeDamping + noise.PhaseDamping + noise.GateError) / 4
	return clamp01(1 - mean)
}

// distributionEntropy is the Shannon entropy of the measured distribution in
// bits. The distribution is renormalized first so floating-point drift in the
// probabilities cannot push the entropy negative.
func distributionEntropy(probs []float64) float64 {
	total := floats.Sum(probs)
	if total <= 0 {
		return 0
	}
	normalized := make([]float64, len(probs))
	for i, p := range probs {
		normalized[i] = p / total
	}
	return stat.Entropy(normalized) / math.Ln2
}

// peakStates returns the top states by probability, highest first, ties
// broken by basis index.
func peakStates(probs []float64, qubits int) []domain.StateProbability {
	indexed := make([]domain.StateProbability, 0, len(probs))
	for i, p := range probs {
		if p > 1e-12 {
			indexed = append(indexed, domain.StateProbability{
				Index:       i,
				Basis:       quantum.FormatBasis(i, qubits),
				Probability: round4(p),
			})
		}
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		if indexed[a].Probability != indexed[b].Probability {
			return indexed[a].Probability > indexed[b].Probability
		}
		return indexed[a].Index < indexed[b].Index
	})
	if len(indexed) > peakStateCount {
		indexed = indexed[:peakStateCount]
	}
	return indexed
}

// fullDistribution renders every basis state in index order
func fullDistribution(probs []float64, qubits int) []domain.StateProbability {
	out := make([]domain.StateProbability, len(probs))
	for i, p := range probs {
		out[i] = domain.StateProbability{
			Index:       i,
			Basis:       quantum.FormatBasis(i, qubits),
			Probability: round4(p),
		}
	}
	return out
}

// recommendations builds the deterministic advice list for a run
func recommendations(fidelity, resilience float64) []string {
	recs := make([]string, 0, 2)
	if fidelity < 0.9 {
		recs = append(recs, "Fidelity below 0.90: consider error correction or a shallower circuit")
	}
	if resilience < 0.8 {
		recs = append(recs, "Low noise resilience: validate on real hardware before trusting results")
	}
	return recs
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
