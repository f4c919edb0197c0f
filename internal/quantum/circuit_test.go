package quantum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuit_Validation(t *testing.T) {
	tests := []struct {
		name string
		spec CircuitSpec
	}{
		{name: "zero qubits", spec: CircuitSpec{Qubits: 0}},
		{name: "negative qubits", spec: CircuitSpec{Qubits: -2}},
		{name: "above ceiling", spec: CircuitSpec{Qubits: 21}},
		{name: "gate target outside register", spec: CircuitSpec{Qubits: 2, Gates: []Gate{H(2)}}},
		{name: "control equals target", spec: CircuitSpec{Qubits: 2, Gates: []Gate{CNOT(0, 0)}}},
		{name: "infinite angle", spec: CircuitSpec{Qubits: 1, Gates: []Gate{RZ(math.Inf(1), 0)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCircuit(tt.spec)
			require.Error(t, err)
			var perr *ParameterError
			assert.ErrorAs(t, err, &perr, "construction failures are parameter errors")
		})
	}
}

func TestNewCircuit_CopiesInputs(t *testing.T) {
	gates := []Gate{H(0), CNOT(0, 1)}
	tags := []string{"entanglement"}

	c, err := NewCircuit(CircuitSpec{
		Name:   "bell",
		Qubits: 2,
		Gates:  gates,
		Tags:   tags,
	})
	require.NoError(t, err)

	// Mutating the spec slices after construction must not reach the circuit.
	gates[0] = X(1)
	tags[0] = "mutated"

	assert.Equal(t, GateH, c.Gates()[0].Kind, "circuit should hold its own copy of the gates")
	assert.Equal(t, "entanglement", c.Tags()[0], "circuit should hold its own copy of the tags")

	// Mutating accessor results must not reach the circuit either.
	got := c.Gates()
	got[1] = H(1)
	assert.Equal(t, GateCNOT, c.Gates()[1].Kind)
}

func TestCircuit_DepthEqualsGateCount(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{
		Qubits: 3,
		Gates:  []Gate{H(0), H(1), H(2), CNOT(0, 1)},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, c.GateCount())
	assert.Equal(t, c.GateCount(), c.Depth(), "depth counts every gate as one sequential step")
}

func TestCircuit_MeasurementPlan(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{Qubits: 3, Gates: []Gate{H(0)}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, c.MeasurementPlan(), "every qubit maps to its own classical bit")
}

func TestCircuit_Metadata(t *testing.T) {
	c, err := NewCircuit(CircuitSpec{
		Name:        "Bell State Preparation",
		Description: "maximally entangled pair",
		Algorithm:   "bell",
		Complexity:  "O(1) gates",
		Qubits:      2,
		Gates:       []Gate{H(0), CNOT(0, 1)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bell State Preparation", c.Name())
	assert.Equal(t, "bell", c.Algorithm())
	assert.Equal(t, "O(1) gates", c.Complexity())
	assert.Equal(t, 2, c.NumQubits())
}
