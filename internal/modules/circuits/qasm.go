package circuits

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/qsim/internal/quantum"
)

// ExportQASM renders a circuit as OPENQASM 2.0 source. Every catalog gate has
// a qelib1 counterpart (phase shifts map to u1/cu1); the measurement plan
// becomes one measure statement per qubit.
func ExportQASM(c *quantum.Circuit) string {
	var sb strings.Builder

	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	if name := c.Name(); name != "" {
		fmt.Fprintf(&sb, "// %s\n", name)
	}
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.NumQubits())
	fmt.Fprintf(&sb, "creg c[%d];\n\n", c.NumQubits())

	for _, g := range c.Gates() {
		sb.WriteString(qasmStatement(g))
	}

	sb.WriteString("\n")
	for _, bit := range c.MeasurementPlan() {
		fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", bit, bit)
	}
	return sb.String()
}

func qasmStatement(g quantum.Gate) string {
	switch g.Kind {
	case quantum.GateRX, quantum.GateRY, quantum.GateRZ:
		return fmt.Sprintf("%s(%s) q[%d];\n", g.Kind, formatAngle(g.Angle), g.Target)
	case quantum.GatePhase:
		return fmt.Sprintf("u1(%s) q[%d];\n", formatAngle(g.Angle), g.Target)
	case quantum.GateCNOT:
		return fmt.Sprintf("cx q[%d], q[%d];\n", g.Control, g.Target)
	case quantum.GateCZ:
		return fmt.Sprintf("cz q[%d], q[%d];\n", g.Control, g.Target)
	case quantum.GateCPhase:
		return fmt.Sprintf("cu1(%s) q[%d], q[%d];\n", formatAngle(g.Angle), g.Control, g.Target)
	case quantum.GateSWAP:
		return fmt.Sprintf("swap q[%d], q[%d];\n", g.Control, g.Target)
	default:
		return fmt.Sprintf("%s q[%d];\n", g.Kind, g.Target)
	}
}

// formatAngle prefers pi-fraction notation so exported sources stay readable:
// pi/2^k covers every angle the QFT template emits.
func formatAngle(val float64) string {
	sign := ""
	abs := val
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	if abs > 1e-12 {
		ratio := math.Pi / abs
		rounded := math.Round(ratio)
		if rounded >= 1 && math.Abs(ratio-rounded) < 1e-9 {
			if rounded == 1 {
				return sign + "pi"
			}
			return fmt.Sprintf("%spi/%d", sign, int64(rounded))
		}
	}
	return fmt.Sprintf("%g", val)
}
