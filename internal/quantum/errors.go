package quantum

import (
	"fmt"
	"time"
)

// ParameterError reports a caller-supplied value the simulator cannot accept:
// a qubit count outside the supported range, a gate aimed at a qubit the
// register does not have, or an algorithm invoked below its minimum size.
// Parameter errors are never retried internally.
type ParameterError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// ResourceError reports a request that exceeds the simulator's capacity
// ceiling. It is raised before any state allocation happens.
type ResourceError struct {
	Qubits int
	Limit  int
	Detail string
}

func (e *ResourceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("simulation of %d qubits exceeds capacity: %s", e.Qubits, e.Detail)
	}
	return fmt.Sprintf("simulation of %d qubits exceeds the %d qubit ceiling", e.Qubits, e.Limit)
}

// TimeoutError reports a run abandoned after its deadline expired. No partial
// state survives the abandonment; the caller may retry with a larger timeout
// or fewer qubits.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("simulation abandoned after %s timeout", e.Timeout)
}
