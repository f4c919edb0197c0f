package quantum

import (
	"fmt"
	"math"
)

// StateVector holds the 2^n complex amplitudes of an n-qubit register,
// indexed by the integer value of the basis string (bit i of the index is
// qubit i). A state vector is exclusively owned by one simulation run; it is
// never shared across concurrent runs.
type StateVector struct {
	qubits int
	amps   []complex128
}

// NewStateVector allocates a register of n qubits initialized to |0...0>.
// A qubit count above MaxQubits fails with a ResourceError before any
// allocation happens.
func NewStateVector(n int) (*StateVector, error) {
	if n < 1 {
		return nil, &ParameterError{Param: "qubits", Value: n, Reason: "at least 1 qubit is required"}
	}
	if n > MaxQubits {
		return nil, &ResourceError{Qubits: n, Limit: MaxQubits}
	}
	amps := make([]complex128, 1<<uint(n))
	amps[0] = 1
	return &StateVector{qubits: n, amps: amps}, nil
}

// NumQubits returns the register width.
func (s *StateVector) NumQubits() int { return s.qubits }

// Dim returns the number of basis states, 2^n.
func (s *StateVector) Dim() int { return len(s.amps) }

// Amplitude returns the amplitude of basis state i.
func (s *StateVector) Amplitude(i int) complex128 { return s.amps[i] }

// Amplitudes returns a copy of the full amplitude array.
func (s *StateVector) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amps))
	copy(out, s.amps)
	return out
}

// Probabilities returns the Born-rule probability of every basis state.
func (s *StateVector) Probabilities() []float64 {
	out := make([]float64, len(s.amps))
	for i, a := range s.amps {
		out[i] = Probability(a)
	}
	return out
}

// TotalProbability returns the sum of basis-state probabilities. For a valid
// state this is 1 within NormTolerance.
func (s *StateVector) TotalProbability() float64 {
	return SumProbabilities(s.amps)
}

// QubitProbabilities returns, per qubit, the probability of measuring 1.
func (s *StateVector) QubitProbabilities() []float64 {
	out := make([]float64, s.qubits)
	for q := 0; q < s.qubits; q++ {
		bit := 1 << uint(q)
		var p float64
		for i, a := range s.amps {
			if i&bit != 0 {
				p += Probability(a)
			}
		}
		out[q] = p
	}
	return out
}

// Apply applies one gate to the state in place. A gate referencing a qubit
// outside the register fails with a ParameterError and leaves the state
// untouched.
func (s *StateVector) Apply(g Gate) error {
	if err := g.validate(s.qubits); err != nil {
		return err
	}
	switch {
	case !g.IsControlled():
		m, err := SingleQubitMatrix(g.Kind, g.Angle)
		if err != nil {
			return err
		}
		s.applySingle(m, g.Target)
	case g.Kind == GateCNOT:
		s.applyCNOT(g.Control, g.Target)
	case g.Kind == GateSWAP:
		s.applySWAP(g.Control, g.Target)
	default:
		// Controlled gates apply their single-qubit sub-matrix to the
		// control-1 subspace only.
		m, err := controlledSubMatrix(g)
		if err != nil {
			return err
		}
		s.applyControlled(m, g.Control, g.Target)
	}
	return nil
}

// applySingle applies a 2x2 matrix to the target qubit. Basis states pair up
// as (i, i|bit); both old amplitudes are read before either slot is written,
// which keeps the update order-independent.
func (s *StateVector) applySingle(m [2][2]complex128, target int) {
	bit := 1 << uint(target)
	for i := range s.amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a0 + m[0][1]*a1
		s.amps[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

// applyCNOT exchanges the amplitudes of each control-1 pair that differs only
// in the target bit.
func (s *StateVector) applyCNOT(control, target int) {
	cbit := 1 << uint(control)
	tbit := 1 << uint(target)
	for i := range s.amps {
		if i&cbit == 0 || i&tbit != 0 {
			continue
		}
		j := i | tbit
		s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
	}
}

// applySWAP exchanges the amplitudes of qubits a and b.
func (s *StateVector) applySWAP(a, b int) {
	abit := 1 << uint(a)
	bbit := 1 << uint(b)
	for i := range s.amps {
		if i&abit == 0 || i&bbit != 0 {
			continue
		}
		j := i ^ abit ^ bbit
		s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
	}
}

// applyControlled applies a 2x2 matrix to the target qubit within the
// control-1 subspace.
func (s *StateVector) applyControlled(m [2][2]complex128, control, target int) {
	cbit := 1 << uint(control)
	tbit := 1 << uint(target)
	for i := range s.amps {
		if i&cbit == 0 || i&tbit != 0 {
			continue
		}
		j := i | tbit
		a0, a1 := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a0 + m[0][1]*a1
		s.amps[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

// renormalize divides the state by its L2 norm and returns the total
// probability observed beforehand. A fully damped state (norm zero) collapses
// to the ground state |0...0>.
func (s *StateVector) renormalize() float64 {
	total := s.TotalProbability()
	if total == 0 {
		s.amps[0] = 1
		return total
	}
	inv := complex(1/math.Sqrt(total), 0)
	for i := range s.amps {
		s.amps[i] *= inv
	}
	return total
}

// FormatBasis renders basis state i of an n-qubit register in ket notation,
// qubit n-1 first, e.g. index 5 of 3 qubits as "|101>".
func FormatBasis(i, n int) string {
	buf := make([]byte, n)
	for q := 0; q < n; q++ {
		if i&(1<<uint(n-1-q)) != 0 {
			buf[q] = '1'
		} else {
			buf[q] = '0'
		}
	}
	return fmt.Sprintf("|%s>", buf)
}

// RunStats summarizes a completed engine pass.
type RunStats struct {
	// GatesApplied counts gate applications, equal to the circuit's gate
	// count on success.
	GatesApplied int
	// ProbabilityDeviation is the largest |1 - total probability| observed
	// before renormalization at any point of the run. With noise it is the
	// worst single-step probability loss the channels inflicted; without
	// noise it is bare floating-point drift.
	ProbabilityDeviation float64
}

// Run executes a circuit against a fresh |0...0> register and returns the
// final state. When a noise model with any nonzero channel is supplied, the
// channels are applied after every gate and the state renormalized before the
// next gate. The ideal (noiseless) path contains no randomness: two runs of
// the same circuit produce bit-identical amplitude vectors.
func Run(c *Circuit, noise *NoiseModel) (*StateVector, RunStats, error) {
	var stats RunStats
	if c == nil {
		return nil, stats, &ParameterError{Param: "circuit", Value: nil, Reason: "circuit is required"}
	}
	if noise != nil {
		if err := noise.Validate(); err != nil {
			return nil, stats, err
		}
	}

	state, err := NewStateVector(c.NumQubits())
	if err != nil {
		return nil, stats, err
	}

	noisy := noise != nil && !noise.IsZero()
	for _, g := range c.gates {
		if err := state.Apply(g); err != nil {
			return nil, stats, err
		}
		stats.GatesApplied++
		if noisy {
			if d := noise.apply(state); d > stats.ProbabilityDeviation {
				stats.ProbabilityDeviation = d
			}
		}
	}
	if !noisy {
		stats.ProbabilityDeviation = math.Abs(1 - state.TotalProbability())
	}
	return state, stats, nil
}
