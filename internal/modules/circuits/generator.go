// Package circuits builds, detects, exports and persists quantum circuits.
package circuits

import (
	"fmt"
	"math"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/quantum"
)

// groverIterationCap bounds Grover iterations for tractability
const groverIterationCap = 3

// AlgorithmInfo describes one catalog template for API consumers
type AlgorithmInfo struct {
	ID          domain.AlgorithmID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Complexity  string             `json:"complexity"`
	MinQubits   int                `json:"min_qubits"`
	MaxQubits   int                `json:"max_qubits"`
}

// template holds the static catalog entry for one algorithm family
type template struct {
	name        string
	description string
	complexity  string
	tags        []string
	minQubits   int
	build       func(qubits int) []quantum.Gate
}

// Generator translates an algorithm identifier plus a qubit count into a
// concrete circuit. It implements domain.Generator. Stateless and safe for
// concurrent use.
type Generator struct {
	templates map[domain.AlgorithmID]template
}

// NewGenerator creates the template catalog.
func NewGenerator() *Generator {
	g := &Generator{templates: map[domain.AlgorithmID]template{}}

	g.templates[domain.AlgorithmBell] = template{
		name:        "Bell State",
		description: "Maximally entangled two-qubit pair",
		complexity:  "O(1) gates",
		tags:        []string{"entanglement"},
		minQubits:   2,
		build:       buildBell,
	}
	g.templates[domain.AlgorithmGHZ] = template{
		name:        "GHZ State",
		description: "Multipartite entanglement, star topology",
		complexity:  "O(n) gates",
		tags:        []string{"entanglement", "multipartite"},
		minQubits:   3,
		build:       buildGHZ,
	}
	g.templates[domain.AlgorithmGrover] = template{
		name:        "Grover Search",
		description: "Amplitude amplification over an unstructured register",
		complexity:  "O(sqrt(N)) iterations",
		tags:        []string{"search"},
		minQubits:   2,
		build:       buildGrover,
	}
	g.templates[domain.AlgorithmDeutschJozsa] = template{
		name:        "Deutsch-Jozsa",
		description: "Single-query balanced-vs-constant oracle decision",
		complexity:  "O(n) gates",
		tags:        []string{"oracle"},
		minQubits:   3,
		build:       buildDeutschJozsa,
	}
	g.templates[domain.AlgorithmTeleportation] = template{
		name:        "Quantum Teleportation",
		description: "State transfer over a shared Bell pair, deterministic corrections",
		complexity:  "O(1) gates",
		tags:        []string{"protocol"},
		minQubits:   3,
		build:       buildTeleportation,
	}
	g.templates[domain.AlgorithmSuperdense] = template{
		name:        "Superdense Coding",
		description: "Two classical bits over one entangled qubit",
		complexity:  "O(1) gates",
		tags:        []string{"protocol"},
		minQubits:   2,
		build:       buildSuperdense,
	}
	g.templates[domain.AlgorithmQFT] = template{
		name:        "Quantum Fourier Transform",
		description: "Basis change to the Fourier domain with qubit reversal",
		complexity:  "O(n^2) gates",
		tags:        []string{"transform"},
		minQubits:   2,
		build:       buildQFT,
	}
	g.templates[domain.AlgorithmShor] = template{
		name:        "Shor Factoring",
		description: "Factoring-class register prepared with the generic template",
		complexity:  "O((log N)^3) gates",
		tags:        []string{"factoring"},
		minQubits:   2,
		build:       buildGeneric,
	}
	g.templates[domain.AlgorithmGeneric] = template{
		name:        "Generic Circuit",
		description: "Universal fallback: superposition plus one entangling gate",
		complexity:  "O(n) gates",
		tags:        []string{"generic"},
		minQubits:   1,
		build:       buildGeneric,
	}

	return g
}

// Generate builds the circuit for an algorithm at the requested register
// width. Unknown identifiers fall back to the generic template; qubit counts
// below the family minimum or above the global ceiling fail with a
// ParameterError naming the violated bound.
func (g *Generator) Generate(id domain.AlgorithmID, qubits int) (*quantum.Circuit, error) {
	tmpl, ok := g.templates[id]
	if !ok {
		id = domain.AlgorithmGeneric
		tmpl = g.templates[id]
	}

	if qubits < tmpl.minQubits {
		return nil, &quantum.ParameterError{
			Param:  "qubits",
			Value:  qubits,
			Reason: fmt.Sprintf("%s requires at least %d qubits", id, tmpl.minQubits),
		}
	}
	if qubits > quantum.MaxQubits {
		return nil, &quantum.ParameterError{
			Param:  "qubits",
			Value:  qubits,
			Reason: fmt.Sprintf("exceeds the %d qubit state-vector ceiling", quantum.MaxQubits),
		}
	}

	return quantum.NewCircuit(quantum.CircuitSpec{
		Name:        tmpl.name,
		Description: tmpl.description,
		Algorithm:   string(id),
		Tags:        tmpl.tags,
		Complexity:  tmpl.complexity,
		Qubits:      qubits,
		Gates:       tmpl.build(qubits),
	})
}

// MinimumQubits returns the qubit floor for an algorithm family. Unknown
// identifiers report the generic minimum.
func (g *Generator) MinimumQubits(id domain.AlgorithmID) int {
	if tmpl, ok := g.templates[id]; ok {
		return tmpl.minQubits
	}
	return g.templates[domain.AlgorithmGeneric].minQubits
}

// Catalog lists every template in stable catalog order.
func (g *Generator) Catalog() []AlgorithmInfo {
	out := make([]AlgorithmInfo, 0, len(g.templates))
	for _, id := range domain.KnownAlgorithms() {
		tmpl := g.templates[id]
		out = append(out, AlgorithmInfo{
			ID:          id,
			Name:        tmpl.name,
			Description: tmpl.description,
			Complexity:  tmpl.complexity,
			MinQubits:   tmpl.minQubits,
			MaxQubits:   quantum.MaxQubits,
		})
	}
	return out
}

func buildBell(int) []quantum.Gate {
	return []quantum.Gate{quantum.H(0), quantum.CNOT(0, 1)}
}

// buildGHZ fans out from qubit 0 to every other qubit. Star topology, not a
// chain; the hub qubit controls every CNOT.
func buildGHZ(qubits int) []quantum.Gate {
	gates := []quantum.Gate{quantum.H(0)}
	for i := 1; i < qubits; i++ {
		gates = append(gates, quantum.CNOT(0, i))
	}
	return gates
}

// buildGrover prepares uniform superposition, then runs floor(pi/4 * sqrt(N))
// oracle+diffusion rounds, capped for tractability. The oracle is a phase
// flip on the last qubit; diffusion is the H-X sandwich around a phase flip.
func buildGrover(qubits int) []quantum.Gate {
	var gates []quantum.Gate
	for i := 0; i < qubits; i++ {
		gates = append(gates, quantum.H(i))
	}

	iterations := int(math.Floor(math.Pi / 4 * math.Sqrt(math.Pow(2, float64(qubits)))))
	if iterations < 1 {
		iterations = 1
	}
	if iterations > groverIterationCap {
		iterations = groverIterationCap
	}

	last := qubits - 1
	for it := 0; it < iterations; it++ {
		gates = append(gates, quantum.Z(last))
		for i := 0; i < qubits; i++ {
			gates = append(gates, quantum.H(i))
		}
		for i := 0; i < qubits; i++ {
			gates = append(gates, quantum.X(i))
		}
		gates = append(gates, quantum.Z(last))
		for i := 0; i < qubits; i++ {
			gates = append(gates, quantum.X(i))
		}
		for i := 0; i < qubits; i++ {
			gates = append(gates, quantum.H(i))
		}
	}
	return gates
}

// buildDeutschJozsa uses the last qubit as the |1> ancilla and a phase flip
// on qubit 0 standing in for a balanced oracle.
func buildDeutschJozsa(qubits int) []quantum.Gate {
	ancilla := qubits - 1
	gates := []quantum.Gate{quantum.X(ancilla)}
	for i := 0; i < qubits; i++ {
		gates = append(gates, quantum.H(i))
	}
	gates = append(gates, quantum.Z(0))
	for i := 0; i < qubits-1; i++ {
		gates = append(gates, quantum.H(i))
	}
	return gates
}

// buildTeleportation moves the state of qubit 0 onto qubit 2. The conditional
// corrections are modeled deterministically with controlled gates instead of
// a mid-circuit measurement and branch.
func buildTeleportation(int) []quantum.Gate {
	return []quantum.Gate{
		quantum.H(1), quantum.CNOT(1, 2),
		quantum.CNOT(0, 1), quantum.H(0),
		quantum.CNOT(1, 2), quantum.CZ(0, 2),
	}
}

// buildSuperdense encodes the fixed payload 11: Z then X on the sender's half
// of the pair, decoded by the receiver with CNOT and Hadamard.
func buildSuperdense(int) []quantum.Gate {
	return []quantum.Gate{
		quantum.H(0), quantum.CNOT(0, 1),
		quantum.Z(0), quantum.X(0),
		quantum.CNOT(0, 1), quantum.H(0),
	}
}

// buildQFT applies per-qubit Hadamard and controlled phases to later qubits,
// then reverses qubit order with a SWAP network.
func buildQFT(qubits int) []quantum.Gate {
	var gates []quantum.Gate
	for i := 0; i < qubits; i++ {
		gates = append(gates, quantum.H(i))
		for j := i + 1; j < qubits; j++ {
			angle := math.Pi / math.Pow(2, float64(j-i))
			gates = append(gates, quantum.CPhase(angle, i, j))
		}
	}
	for i := 0; i < qubits/2; i++ {
		gates = append(gates, quantum.SWAP(i, qubits-1-i))
	}
	return gates
}

func buildGeneric(qubits int) []quantum.Gate {
	var gates []quantum.Gate
	limit := qubits
	if limit > 4 {
		limit = 4
	}
	for i := 0; i < limit; i++ {
		gates = append(gates, quantum.H(i))
	}
	if qubits > 1 {
		gates = append(gates, quantum.CNOT(0, 1))
	}
	return gates
}
