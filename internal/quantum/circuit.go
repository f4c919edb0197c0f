package quantum

// MaxQubits is the practical state-vector ceiling. A 20 qubit register already
// holds 2^20 complex amplitudes (16 MiB); anything beyond is rejected.
const MaxQubits = 20

// CircuitSpec carries the inputs to NewCircuit. The zero value of optional
// metadata fields is acceptable; Qubits and Gates are required.
type CircuitSpec struct {
	Name        string
	Description string
	Algorithm   string
	Tags        []string
	Complexity  string
	Qubits      int
	Gates       []Gate
}

// Circuit is an immutable description of a quantum program: a qubit count, an
// ordered gate sequence, a computational-basis measurement plan covering every
// qubit, and descriptive metadata. Circuits are produced once (typically by
// the generator) and never mutated afterwards; the constructor copies every
// slice it is given and accessors return copies.
type Circuit struct {
	name        string
	description string
	algorithm   string
	tags        []string
	complexity  string
	qubits      int
	gates       []Gate
}

// NewCircuit validates the spec and constructs an immutable circuit.
// Validation failures are ParameterErrors: qubit count outside [1, MaxQubits],
// a gate referencing a qubit the register does not have, coinciding control
// and target, or a non-finite rotation angle.
func NewCircuit(spec CircuitSpec) (*Circuit, error) {
	if spec.Qubits < 1 {
		return nil, &ParameterError{Param: "qubits", Value: spec.Qubits, Reason: "at least 1 qubit is required"}
	}
	if spec.Qubits > MaxQubits {
		return nil, &ParameterError{Param: "qubits", Value: spec.Qubits, Reason: "exceeds the 20 qubit state-vector ceiling"}
	}
	for _, g := range spec.Gates {
		if err := g.validate(spec.Qubits); err != nil {
			return nil, err
		}
	}

	c := &Circuit{
		name:        spec.Name,
		description: spec.Description,
		algorithm:   spec.Algorithm,
		complexity:  spec.Complexity,
		qubits:      spec.Qubits,
		gates:       make([]Gate, len(spec.Gates)),
	}
	copy(c.gates, spec.Gates)
	if len(spec.Tags) > 0 {
		c.tags = make([]string, len(spec.Tags))
		copy(c.tags, spec.Tags)
	}
	return c, nil
}

// Name returns the circuit's display name.
func (c *Circuit) Name() string { return c.name }

// Description returns the circuit's free-text description.
func (c *Circuit) Description() string { return c.description }

// Algorithm returns the identifier of the template that produced the circuit.
func (c *Circuit) Algorithm() string { return c.algorithm }

// Complexity returns the template's complexity classification.
func (c *Circuit) Complexity() string { return c.complexity }

// Tags returns a copy of the circuit's tags.
func (c *Circuit) Tags() []string {
	if len(c.tags) == 0 {
		return nil
	}
	tags := make([]string, len(c.tags))
	copy(tags, c.tags)
	return tags
}

// NumQubits returns the width of the register the circuit runs on.
func (c *Circuit) NumQubits() int { return c.qubits }

// Gates returns a copy of the ordered gate sequence.
func (c *Circuit) Gates() []Gate {
	gates := make([]Gate, len(c.gates))
	copy(gates, c.gates)
	return gates
}

// GateCount returns the number of gate applications in the circuit.
func (c *Circuit) GateCount() int { return len(c.gates) }

// Depth returns the circuit depth. Depth equals the gate count: gates on
// disjoint qubits are counted as sequential steps, not packed in parallel.
func (c *Circuit) Depth() int { return len(c.gates) }

// MeasurementPlan returns the classical bit assigned to each qubit. Every
// qubit is measured in the computational basis; qubit i maps to bit i.
func (c *Circuit) MeasurementPlan() []int {
	plan := make([]int, c.qubits)
	for i := range plan {
		plan[i] = i
	}
	return plan
}
