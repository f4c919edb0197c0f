// Package events provides event management functionality.
package events

// EventType represents different event types
type EventType string

const (
	// Simulation run lifecycle
	RunStarted   EventType = "RUN_STARTED"
	RunCompleted EventType = "RUN_COMPLETED"
	RunFailed    EventType = "RUN_FAILED"

	// Parameter sweep lifecycle
	SweepQueued    EventType = "SWEEP_QUEUED"
	SweepStarted   EventType = "SWEEP_STARTED"
	SweepProgress  EventType = "SWEEP_PROGRESS"
	SweepCompleted EventType = "SWEEP_COMPLETED"
	SweepFailed    EventType = "SWEEP_FAILED"

	// Circuit library and cache
	CircuitSaved   EventType = "CIRCUIT_SAVED"
	CircuitDeleted EventType = "CIRCUIT_DELETED"
	CacheCleared   EventType = "CACHE_CLEARED"

	// Scheduled job lifecycle
	JobStarted   EventType = "JOB_STARTED"
	JobProgress  EventType = "JOB_PROGRESS"
	JobCompleted EventType = "JOB_COMPLETED"
	JobFailed    EventType = "JOB_FAILED"

	// System state
	SettingsChanged     EventType = "SETTINGS_CHANGED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)
