package settings

import "github.com/aristath/qsim/internal/quantum"

// SettingDefaults holds all default values for configurable settings
var SettingDefaults = map[string]interface{}{
	// Simulation guardrails
	"fidelity_threshold": 0.95,    // Minimum fidelity for a run to count as valid (0-1)
	"default_timeout_ms": 30000.0, // Per-run wall clock budget when the request carries none
	"max_qubits":         20.0,    // Request ceiling; the engine enforces 20 regardless

	// Sweep execution
	"sweep_workers":   4.0,  // Concurrent sweep point evaluations
	"sweep_max_steps": 64.0, // Upper bound on requested sweep resolution

	// Result cache
	"cache_enabled":              1.0, // 1.0 = serve repeat requests from cache
	"cache_clear_interval_hours": 0.0, // Scheduled cache clear interval (0 = never)

	// Noise preset applied when a request carries no noise model
	"noise_preset": "none", // "none", "light", "moderate" or "heavy"

	// Maintenance jobs
	"job_checkpoint_minutes": 60.0, // WAL checkpoint interval (minutes)
	"job_vacuum_hour":        3.0,  // Daily vacuum hour (0-23)
}

// StringSettings defines which settings should be treated as strings rather than floats
var StringSettings = map[string]bool{
	"noise_preset": true,
}

// SettingDescriptions holds human-readable descriptions for all settings
var SettingDescriptions = map[string]string{
	"fidelity_threshold":         "Minimum fidelity for a simulation to be reported as valid (0-1)",
	"default_timeout_ms":         "Wall clock budget in milliseconds applied to requests without an explicit timeout",
	"max_qubits":                 "Largest register accepted through the API (1-20); the state-vector engine caps at 20 regardless",
	"sweep_workers":              "Number of sweep points evaluated concurrently",
	"sweep_max_steps":            "Largest number of steps accepted for a parameter sweep",
	"cache_enabled":              "Serve repeated identical requests from the result cache (1.0 = yes, 0.0 = no)",
	"cache_clear_interval_hours": "Hours between scheduled result cache clears (0 disables the job)",
	"noise_preset":               "Noise model applied when a request specifies none: 'none', 'light', 'moderate' or 'heavy'",
	"job_checkpoint_minutes":     "Minutes between WAL checkpoint passes over the databases",
	"job_vacuum_hour":            "Hour of day (0-23) the daily vacuum and archive prune runs",
}

// NoisePresets maps preset names to canned noise models.
// The "none" preset is a valid name resolving to no noise at all.
var NoisePresets = map[string]*quantum.NoiseModel{
	"none": nil,
	"light": {
		Depolarizing:     0.001,
		AmplitudeDamping: 0.0005,
		PhaseDamping:     0.0005,
		GateError:        0.001,
	},
	"moderate": {
		Depolarizing:     0.01,
		AmplitudeDamping: 0.005,
		PhaseDamping:     0.005,
		GateError:        0.01,
	},
	"heavy": {
		Depolarizing:     0.05,
		AmplitudeDamping: 0.02,
		PhaseDamping:     0.02,
		GateError:        0.05,
	},
}

// SettingUpdate represents a setting value update request
type SettingUpdate struct {
	Value interface{} `json:"value"`
}

// NoisePresetResponse represents the noise preset response
type NoisePresetResponse struct {
	NoisePreset string `json:"noise_preset"`
}
