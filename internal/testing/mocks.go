package testing

import (
	"context"
	"sync"

	"github.com/aristath/qsim/internal/domain"
)

// MockDetector is a scriptable domain.Detector for testing
type MockDetector struct {
	mu     sync.RWMutex
	result domain.AlgorithmID
	calls  []string
}

// NewMockDetector creates a detector that always resolves to the given id.
func NewMockDetector(result domain.AlgorithmID) *MockDetector {
	return &MockDetector{result: result}
}

// SetResult changes what the detector resolves to
func (m *MockDetector) SetResult(id domain.AlgorithmID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = id
}

// Detect records the description and returns the scripted result
func (m *MockDetector) Detect(description string) domain.AlgorithmID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, description)
	return m.result
}

// Calls returns the descriptions Detect has seen
func (m *MockDetector) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSimulator is a scriptable domain.Simulator for testing the sweep
// processor and handlers without running the engine.
type MockSimulator struct {
	mu       sync.RWMutex
	result   *domain.SimulationResult
	err      error
	requests []domain.SimulationRequest
	// errOnce makes the next call fail and then clears the error,
	// for retry-path tests
	errOnce bool
}

// NewMockSimulator creates a simulator returning the given result.
func NewMockSimulator(result *domain.SimulationResult) *MockSimulator {
	return &MockSimulator{result: result}
}

// SetError makes every subsequent call fail with err
func (m *MockSimulator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.errOnce = false
}

// SetErrorOnce makes only the next call fail with err
func (m *MockSimulator) SetErrorOnce(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.errOnce = true
}

// SetResult changes the scripted result
func (m *MockSimulator) SetResult(result *domain.SimulationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
}

// Simulate records the request and returns the scripted outcome. It honors
// context cancellation so timeout paths stay testable.
func (m *MockSimulator) Simulate(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.err != nil {
		err := m.err
		if m.errOnce {
			m.err = nil
			m.errOnce = false
		}
		return nil, err
	}

	if m.result == nil {
		return nil, nil
	}
	copied := *m.result
	if req.Noise != nil {
		noise := *req.Noise
		copied.Noise = &noise
	}
	return &copied, nil
}

// Requests returns every request Simulate has seen
func (m *MockSimulator) Requests() []domain.SimulationRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SimulationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
