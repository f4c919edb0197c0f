// Package work runs queued noise-parameter sweeps in the background. A sweep
// fixes an algorithm and qubit count and walks one noise channel across a
// value range, simulating every point to trace the fidelity curve.
package work

import (
	"fmt"
	"time"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/quantum"
)

// MaxPointRetries bounds how often one sweep point is re-attempted after a
// transient memory-pressure rejection.
const MaxPointRetries = 2

// pointRetryDelay is the pause before a rejected point is attempted again.
const pointRetryDelay = 500 * time.Millisecond

// SweepParameter names the noise channel a sweep varies.
type SweepParameter string

// Sweepable noise channels.
const (
	SweepDepolarizing     SweepParameter = "depolarizing"
	SweepAmplitudeDamping SweepParameter = "amplitude_damping"
	SweepPhaseDamping     SweepParameter = "phase_damping"
	SweepGateError        SweepParameter = "gate_error"
)

// SweepState tracks a sweep through its lifecycle.
type SweepState string

// Sweep lifecycle states.
const (
	SweepStateQueued    SweepState = "queued"
	SweepStateRunning   SweepState = "running"
	SweepStateCompleted SweepState = "completed"
	SweepStateFailed    SweepState = "failed"
)

// SweepRequest describes one queued sweep. Base supplies fixed values for the
// channels the sweep does not vary; nil means those channels stay at zero.
type SweepRequest struct {
	Algorithm domain.AlgorithmID  `json:"algorithm" msgpack:"algorithm"`
	Parameter SweepParameter      `json:"parameter" msgpack:"parameter"`
	Base      *quantum.NoiseModel `json:"base,omitempty" msgpack:"base"`
	Qubits    int                 `json:"qubits" msgpack:"qubits"`
	From      float64             `json:"from" msgpack:"from"`
	To        float64             `json:"to" msgpack:"to"`
	Steps     int                 `json:"steps" msgpack:"steps"`
}

// Validate checks the sweep shape. Per-algorithm qubit minimums are left to
// the generator at execution time; a violation there fails the sweep instead
// of the enqueue.
func (r *SweepRequest) Validate(maxSteps int) error {
	if _, ok := domain.ParseAlgorithmID(string(r.Algorithm)); !ok {
		return &quantum.ParameterError{
			Param:  "algorithm",
			Value:  string(r.Algorithm),
			Reason: "unknown algorithm identifier",
		}
	}
	if r.Qubits < 1 || r.Qubits > quantum.MaxQubits {
		return &quantum.ParameterError{
			Param:  "qubits",
			Value:  r.Qubits,
			Reason: fmt.Sprintf("qubit count must be between 1 and %d", quantum.MaxQubits),
		}
	}
	switch r.Parameter {
	case SweepDepolarizing, SweepAmplitudeDamping, SweepPhaseDamping, SweepGateError:
	default:
		return &quantum.ParameterError{
			Param:  "parameter",
			Value:  string(r.Parameter),
			Reason: "unknown sweep parameter",
		}
	}
	if r.From < 0 || r.From > 1 || r.To < 0 || r.To > 1 {
		return &quantum.ParameterError{
			Param:  "range",
			Value:  fmt.Sprintf("[%g, %g]", r.From, r.To),
			Reason: "sweep range must lie within [0, 1]",
		}
	}
	if r.To < r.From {
		return &quantum.ParameterError{
			Param:  "range",
			Value:  fmt.Sprintf("[%g, %g]", r.From, r.To),
			Reason: "sweep range must not be inverted",
		}
	}
	if r.Steps < 2 || r.Steps > maxSteps {
		return &quantum.ParameterError{
			Param:  "steps",
			Value:  r.Steps,
			Reason: fmt.Sprintf("step count must be between 2 and %d", maxSteps),
		}
	}
	if r.Base != nil {
		if err := r.Base.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// values returns the parameter value of every sweep point, evenly spaced from
// From to To inclusive.
func (r *SweepRequest) values() []float64 {
	vals := make([]float64, r.Steps)
	span := r.To - r.From
	for i := range vals {
		vals[i] = r.From + span*float64(i)/float64(r.Steps-1)
	}
	return vals
}

// noiseAt builds the noise model for one point: the base model with the swept
// channel set to value.
func (r *SweepRequest) noiseAt(value float64) *quantum.NoiseModel {
	noise := quantum.NoiseModel{}
	if r.Base != nil {
		noise = *r.Base
	}
	switch r.Parameter {
	case SweepDepolarizing:
		noise.Depolarizing = value
	case SweepAmplitudeDamping:
		noise.AmplitudeDamping = value
	case SweepPhaseDamping:
		noise.PhaseDamping = value
	case SweepGateError:
		noise.GateError = value
	}
	return &noise
}

// SweepPoint is one simulated point of the curve.
type SweepPoint struct {
	RunID     string  `json:"run_id" msgpack:"run_id"`
	Value     float64 `json:"value" msgpack:"value"`
	Fidelity  float64 `json:"fidelity" msgpack:"fidelity"`
	ErrorRate float64 `json:"error_rate" msgpack:"error_rate"`
	Retries   int     `json:"retries,omitempty" msgpack:"retries"`
	Valid     bool    `json:"valid" msgpack:"valid"`
}

// SweepStatus is the live and archived view of one sweep.
type SweepStatus struct {
	CreatedAt  time.Time    `json:"created_at" msgpack:"created_at"`
	StartedAt  time.Time    `json:"started_at" msgpack:"started_at"`
	FinishedAt time.Time    `json:"finished_at" msgpack:"finished_at"`
	ID         string       `json:"id" msgpack:"id"`
	State      SweepState   `json:"state" msgpack:"state"`
	Error      string       `json:"error,omitempty" msgpack:"error"`
	Request    SweepRequest `json:"request" msgpack:"request"`
	Points     []SweepPoint `json:"points" msgpack:"points"`
	Completed  int          `json:"completed" msgpack:"completed"`
	Total      int          `json:"total" msgpack:"total"`
}

// snapshot returns a copy safe to hand out after the processor's lock is
// released.
func (st *SweepStatus) snapshot() *SweepStatus {
	out := *st
	out.Points = make([]SweepPoint, len(st.Points))
	copy(out.Points, st.Points)
	return &out
}
