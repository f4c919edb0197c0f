package quantum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateVector_GroundState(t *testing.T) {
	s, err := NewStateVector(3)
	require.NoError(t, err)

	assert.Equal(t, 8, s.Dim())
	assert.Equal(t, complex128(1), s.Amplitude(0), "register initializes to |000>")
	for i := 1; i < s.Dim(); i++ {
		assert.Equal(t, complex128(0), s.Amplitude(i))
	}
	assert.InDelta(t, 1.0, s.TotalProbability(), 1e-12)
}

func TestNewStateVector_Rejections(t *testing.T) {
	_, err := NewStateVector(0)
	var perr *ParameterError
	assert.ErrorAs(t, err, &perr, "zero qubits is a parameter error")

	_, err = NewStateVector(MaxQubits + 1)
	var rerr *ResourceError
	require.ErrorAs(t, err, &rerr, "exceeding the ceiling is a resource error")
	assert.Equal(t, MaxQubits, rerr.Limit)
	assert.Equal(t, MaxQubits+1, rerr.Qubits)
}

func TestApplyHadamard_Superposition(t *testing.T) {
	s, err := NewStateVector(1)
	require.NoError(t, err)
	require.NoError(t, s.Apply(H(0)))

	inv := complex(1/math.Sqrt2, 0)
	assert.True(t, ApproxEqual(inv, s.Amplitude(0), 1e-12))
	assert.True(t, ApproxEqual(inv, s.Amplitude(1), 1e-12))
}

func TestApplyHadamard_TwiceIsIdentity(t *testing.T) {
	s, err := NewStateVector(2)
	require.NoError(t, err)
	require.NoError(t, s.Apply(H(1)))
	require.NoError(t, s.Apply(H(1)))

	assert.True(t, ApproxEqual(1, s.Amplitude(0), 1e-12), "H applied twice should restore |00>")
	assert.InDelta(t, 1.0, s.TotalProbability(), 1e-12)
}

func TestApplyX_FlipsBasisState(t *testing.T) {
	s, err := NewStateVector(2)
	require.NoError(t, err)
	require.NoError(t, s.Apply(X(0)))

	assert.Equal(t, complex128(0), s.Amplitude(0))
	assert.Equal(t, complex128(1), s.Amplitude(1), "X on qubit 0 moves the amplitude to index 1")
}

func TestApply_TargetOutsideRegister(t *testing.T) {
	s, err := NewStateVector(2)
	require.NoError(t, err)

	err = s.Apply(H(5))
	var perr *ParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, complex128(1), s.Amplitude(0), "failed application leaves the state untouched")
}

func TestRun_BellAmplitudes(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{Qubits: 2, Gates: []Gate{H(0), CNOT(0, 1)}})
	require.NoError(t, err)

	state, stats, err := Run(c, nil)
	require.NoError(t, err)

	want := 1 / math.Sqrt2
	amps := state.Amplitudes()
	assert.InDelta(t, want, real(amps[0]), 1e-4)
	assert.InDelta(t, 0.0, real(amps[1]), 1e-4)
	assert.InDelta(t, 0.0, real(amps[2]), 1e-4)
	assert.InDelta(t, want, real(amps[3]), 1e-4)
	assert.InDelta(t, 1.0, state.TotalProbability(), 1e-6, "normalization holds on the ideal path")
	assert.Equal(t, 2, stats.GatesApplied)
}

func TestRun_GHZState(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{Qubits: 3, Gates: []Gate{H(0), CNOT(0, 1), CNOT(0, 2)}})
	require.NoError(t, err)

	state, _, err := Run(c, nil)
	require.NoError(t, err)

	want := 1 / math.Sqrt2
	for i, a := range state.Amplitudes() {
		switch i {
		case 0, 7:
			assert.InDelta(t, want, real(a), 1e-6, "GHZ amplitude at index %d", i)
		default:
			assert.InDelta(t, 0.0, Probability(a), 1e-12, "GHZ state has no support at index %d", i)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{
		Qubits: 3,
		Gates:  []Gate{H(0), RY(0.7, 1), CNOT(0, 2), T(1), CPhase(math.Pi/3, 1, 2)},
	})
	require.NoError(t, err)

	first, _, err := Run(c, nil)
	require.NoError(t, err)
	second, _, err := Run(c, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Amplitudes(), second.Amplitudes(), "the ideal path has no hidden randomness")
}

// The engine applies CNOT by swapping paired amplitudes. This cross-checks the
// bit loop against the catalog's explicit 4x4 matrix in |control target>
// ordering.
func TestApplyCNOT_MatchesCatalogMatrix(t *testing.T) {
	prep := []Gate{RY(0.7, 0), RY(1.1, 1)}

	s, err := NewStateVector(2)
	require.NoError(t, err)
	for _, g := range prep {
		require.NoError(t, s.Apply(g))
	}
	before := s.Amplitudes()
	require.NoError(t, s.Apply(CNOT(0, 1)))

	m, err := TwoQubitMatrix(GateCNOT, 0)
	require.NoError(t, err)

	// Engine index i has qubit 0 (control) in bit 0 and qubit 1 (target) in
	// bit 1; the catalog matrix indexes basis states as control*2 + target.
	want := make([]complex128, 4)
	for i := 0; i < 4; i++ {
		ctrl, tgt := i&1, (i>>1)&1
		row := ctrl<<1 | tgt
		for k := 0; k < 4; k++ {
			kc, kt := k&1, (k>>1)&1
			col := kc<<1 | kt
			want[i] += m[row][col] * before[k]
		}
	}

	got := s.Amplitudes()
	for i := range want {
		assert.True(t, ApproxEqual(want[i], got[i], 1e-12), "amplitude %d: want %v, got %v", i, want[i], got[i])
	}
}

func TestApplySWAP_ExchangesQubits(t *testing.T) {
	s, err := NewStateVector(2)
	require.NoError(t, err)
	require.NoError(t, s.Apply(X(0)))
	require.NoError(t, s.Apply(SWAP(0, 1)))

	assert.Equal(t, complex128(1), s.Amplitude(2), "|01> should become |10>")
}

func TestQubitProbabilities_BellState(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{Qubits: 2, Gates: []Gate{H(0), CNOT(0, 1)}})
	require.NoError(t, err)
	state, _, err := Run(c, nil)
	require.NoError(t, err)

	probs := state.QubitProbabilities()
	assert.InDelta(t, 0.5, probs[0], 1e-9)
	assert.InDelta(t, 0.5, probs[1], 1e-9)
}

func TestFormatBasis(t *testing.T) {
	assert.Equal(t, "|101>", FormatBasis(5, 3))
	assert.Equal(t, "|000>", FormatBasis(0, 3))
	assert.Equal(t, "|10>", FormatBasis(2, 2), "qubit 1 prints first")
}
