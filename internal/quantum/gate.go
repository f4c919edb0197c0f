package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
)

// GateKind names an entry in the gate catalog.
type GateKind string

const (
	GateI      GateKind = "id"
	GateX      GateKind = "x"
	GateY      GateKind = "y"
	GateZ      GateKind = "z"
	GateH      GateKind = "h"
	GateS      GateKind = "s"
	GateT      GateKind = "t"
	GateRX     GateKind = "rx"
	GateRY     GateKind = "ry"
	GateRZ     GateKind = "rz"
	GatePhase  GateKind = "phase"
	GateCNOT   GateKind = "cnot"
	GateCZ     GateKind = "cz"
	GateCPhase GateKind = "cphase"
	GateSWAP   GateKind = "swap"
)

// Gate is a single application of a catalog gate to specific qubits. Gates
// are immutable values and may be reused across circuits. Control is -1 for
// single-qubit gates. Angle is meaningful only for the parameterized kinds.
type Gate struct {
	Kind    GateKind `json:"kind"`
	Target  int      `json:"target"`
	Control int      `json:"control"`
	Angle   float64  `json:"angle,omitempty"`
}

// Identity returns an identity gate on target.
func Identity(target int) Gate { return Gate{Kind: GateI, Target: target, Control: -1} }

// X returns a Pauli-X (NOT) gate on target.
func X(target int) Gate { return Gate{Kind: GateX, Target: target, Control: -1} }

// Y returns a Pauli-Y gate on target.
func Y(target int) Gate { return Gate{Kind: GateY, Target: target, Control: -1} }

// Z returns a Pauli-Z gate on target.
func Z(target int) Gate { return Gate{Kind: GateZ, Target: target, Control: -1} }

// H returns a Hadamard gate on target.
func H(target int) Gate { return Gate{Kind: GateH, Target: target, Control: -1} }

// S returns the S phase gate (quarter turn) on target.
func S(target int) Gate { return Gate{Kind: GateS, Target: target, Control: -1} }

// T returns the T phase gate (eighth turn) on target.
func T(target int) Gate { return Gate{Kind: GateT, Target: target, Control: -1} }

// RX returns a rotation about the X axis by theta radians.
func RX(theta float64, target int) Gate {
	return Gate{Kind: GateRX, Target: target, Control: -1, Angle: theta}
}

// RY returns a rotation about the Y axis by theta radians.
func RY(theta float64, target int) Gate {
	return Gate{Kind: GateRY, Target: target, Control: -1, Angle: theta}
}

// RZ returns a rotation about the Z axis by theta radians. The catalog uses
// the diag(1, e^{i*theta}) convention.
func RZ(theta float64, target int) Gate {
	return Gate{Kind: GateRZ, Target: target, Control: -1, Angle: theta}
}

// Phase returns a phase shift of theta radians on the |1> component.
func Phase(theta float64, target int) Gate {
	return Gate{Kind: GatePhase, Target: target, Control: -1, Angle: theta}
}

// CNOT returns a controlled-NOT with the given control and target qubits.
func CNOT(control, target int) Gate {
	return Gate{Kind: GateCNOT, Target: target, Control: control}
}

// CZ returns a controlled-Z with the given control and target qubits.
func CZ(control, target int) Gate {
	return Gate{Kind: GateCZ, Target: target, Control: control}
}

// CPhase returns a controlled phase shift of theta radians.
func CPhase(theta float64, control, target int) Gate {
	return Gate{Kind: GateCPhase, Target: target, Control: control, Angle: theta}
}

// SWAP returns a gate exchanging the amplitudes of qubits a and b.
func SWAP(a, b int) Gate {
	return Gate{Kind: GateSWAP, Target: b, Control: a}
}

// IsControlled reports whether the gate acts on two qubits.
func (g Gate) IsControlled() bool { return g.Control >= 0 }

// Parameterized reports whether the gate carries an angle argument.
func (g Gate) Parameterized() bool {
	switch g.Kind {
	case GateRX, GateRY, GateRZ, GatePhase, GateCPhase:
		return true
	}
	return false
}

// singleQubitKind reports whether kind names a single-qubit catalog entry.
func singleQubitKind(kind GateKind) bool {
	switch kind {
	case GateI, GateX, GateY, GateZ, GateH, GateS, GateT, GateRX, GateRY, GateRZ, GatePhase:
		return true
	}
	return false
}

// twoQubitKind reports whether kind names a two-qubit catalog entry.
func twoQubitKind(kind GateKind) bool {
	switch kind {
	case GateCNOT, GateCZ, GateCPhase, GateSWAP:
		return true
	}
	return false
}

// SingleQubitMatrix returns the 2x2 computational-basis unitary for a
// single-qubit gate kind. Parameterized kinds compute their matrix on demand
// from the angle; all other kinds ignore it.
func SingleQubitMatrix(kind GateKind, angle float64) ([2][2]complex128, error) {
	switch kind {
	case GateI:
		return [2][2]complex128{{1, 0}, {0, 1}}, nil
	case GateX:
		return [2][2]complex128{{0, 1}, {1, 0}}, nil
	case GateY:
		return [2][2]complex128{{0, complex(0, -1)}, {complex(0, 1), 0}}, nil
	case GateZ:
		return [2][2]complex128{{1, 0}, {0, -1}}, nil
	case GateH:
		f := complex(1/math.Sqrt2, 0)
		return [2][2]complex128{{f, f}, {f, -f}}, nil
	case GateS:
		return [2][2]complex128{{1, 0}, {0, complex(0, 1)}}, nil
	case GateT:
		return [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}, nil
	case GateRX:
		c := complex(math.Cos(angle/2), 0)
		s := complex(0, -math.Sin(angle/2))
		return [2][2]complex128{{c, s}, {s, c}}, nil
	case GateRY:
		c := complex(math.Cos(angle/2), 0)
		s := complex(math.Sin(angle/2), 0)
		return [2][2]complex128{{c, -s}, {s, c}}, nil
	case GateRZ, GatePhase:
		return [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, angle))}}, nil
	}
	return [2][2]complex128{}, &ParameterError{Param: "kind", Value: string(kind), Reason: "not a single-qubit catalog gate"}
}

// TwoQubitMatrix returns the 4x4 computational-basis unitary for a two-qubit
// gate kind, in |q_control q_target> ordering (control is the high bit).
func TwoQubitMatrix(kind GateKind, angle float64) ([4][4]complex128, error) {
	switch kind {
	case GateCNOT:
		return [4][4]complex128{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 0, 1},
			{0, 0, 1, 0},
		}, nil
	case GateCZ:
		return [4][4]complex128{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{0, 0, 0, -1},
		}, nil
	case GateCPhase:
		return [4][4]complex128{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{0, 0, 0, cmplx.Exp(complex(0, angle))},
		}, nil
	case GateSWAP:
		return [4][4]complex128{
			{1, 0, 0, 0},
			{0, 0, 1, 0},
			{0, 1, 0, 0},
			{0, 0, 0, 1},
		}, nil
	}
	return [4][4]complex128{}, &ParameterError{Param: "kind", Value: string(kind), Reason: "not a two-qubit catalog gate"}
}

// controlledSubMatrix returns the single-qubit matrix a controlled gate
// applies to its control-1 subspace. CNOT maps to X, CZ to Z and CPhase to a
// phase shift.
func controlledSubMatrix(g Gate) ([2][2]complex128, error) {
	switch g.Kind {
	case GateCNOT:
		return SingleQubitMatrix(GateX, 0)
	case GateCZ:
		return SingleQubitMatrix(GateZ, 0)
	case GateCPhase:
		return SingleQubitMatrix(GatePhase, g.Angle)
	}
	return [2][2]complex128{}, &ParameterError{Param: "kind", Value: string(g.Kind), Reason: "no controlled sub-matrix"}
}

// validate checks the gate against a register of n qubits.
func (g Gate) validate(n int) error {
	if !singleQubitKind(g.Kind) && !twoQubitKind(g.Kind) {
		return &ParameterError{Param: "kind", Value: string(g.Kind), Reason: "unknown gate kind"}
	}
	if g.Target < 0 || g.Target >= n {
		return &ParameterError{
			Param:  "target",
			Value:  g.Target,
			Reason: fmt.Sprintf("gate %s targets a qubit outside the %d qubit register", g.Kind, n),
		}
	}
	if twoQubitKind(g.Kind) {
		if g.Control < 0 || g.Control >= n {
			return &ParameterError{
				Param:  "control",
				Value:  g.Control,
				Reason: fmt.Sprintf("gate %s control is outside the %d qubit register", g.Kind, n),
			}
		}
		if g.Control == g.Target {
			return &ParameterError{Param: "control", Value: g.Control, Reason: "control and target must be distinct qubits"}
		}
	} else if g.Control >= 0 {
		return &ParameterError{Param: "control", Value: g.Control, Reason: fmt.Sprintf("gate %s takes no control qubit", g.Kind)}
	}
	if g.Parameterized() && (math.IsNaN(g.Angle) || math.IsInf(g.Angle, 0)) {
		return &ParameterError{Param: "angle", Value: g.Angle, Reason: "angle must be finite"}
	}
	return nil
}
