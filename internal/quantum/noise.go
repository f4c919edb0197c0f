package quantum

import (
	"fmt"
	"math"
)

// NoiseModel parameterizes the approximate decoherence channels applied after
// each gate. All four parameters are probabilities in [0, 1]. The channel
// composition is an additive approximation, not a Kraus-operator density
// matrix treatment, and the fixed order (depolarizing, then amplitude
// damping, then phase damping) is part of the contract.
//
// GateError does not perturb the state; it participates in the noise
// resilience score and the cache key only.
type NoiseModel struct {
	Depolarizing     float64 `json:"depolarizing" msgpack:"depolarizing"`
	AmplitudeDamping float64 `json:"amplitude_damping" msgpack:"amplitude_damping"`
	PhaseDamping     float64 `json:"phase_damping" msgpack:"phase_damping"`
	GateError        float64 `json:"gate_error" msgpack:"gate_error"`
}

// Validate checks that every channel parameter lies in [0, 1].
func (m *NoiseModel) Validate() error {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"depolarizing", m.Depolarizing},
		{"amplitude_damping", m.AmplitudeDamping},
		{"phase_damping", m.PhaseDamping},
		{"gate_error", m.GateError},
	} {
		if math.IsNaN(p.value) || p.value < 0 || p.value > 1 {
			return &ParameterError{
				Param:  p.name,
				Value:  p.value,
				Reason: fmt.Sprintf("noise parameter %s must be in [0, 1]", p.name),
			}
		}
	}
	return nil
}

// IsZero reports whether every channel parameter that perturbs the state is
// zero. GateError alone does not make a model nonzero.
func (m *NoiseModel) IsZero() bool {
	return m.Depolarizing == 0 && m.AmplitudeDamping == 0 && m.PhaseDamping == 0
}

// apply perturbs the state in place and returns the probability-sum deviation
// |1 - total| observed before renormalization. The depolarizing channel
// blends each amplitude toward the uniform amplitude 1/sqrt(2^n); amplitude
// damping scales every magnitude by sqrt(1-gamma); phase damping attenuates
// the imaginary component by (1-gamma). The state is renormalized afterwards
// so the normalization invariant holds before the next gate.
func (m *NoiseModel) apply(s *StateVector) float64 {
	amps := s.amps

	if p := m.Depolarizing; p > 0 {
		uniform := complex(1/math.Sqrt(float64(len(amps))), 0)
		keep := complex(1-p, 0)
		blend := complex(p, 0) * uniform
		for i := range amps {
			amps[i] = keep*amps[i] + blend
		}
	}

	if g := m.AmplitudeDamping; g > 0 {
		scale := complex(math.Sqrt(1-g), 0)
		for i := range amps {
			amps[i] *= scale
		}
	}

	if g := m.PhaseDamping; g > 0 {
		keep := 1 - g
		for i := range amps {
			amps[i] = complex(real(amps[i]), imag(amps[i])*keep)
		}
	}

	total := s.renormalize()
	return math.Abs(1 - total)
}
