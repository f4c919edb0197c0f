package settings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/quantum"
)

// Service provides settings business logic
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new settings service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// GetAll retrieves all settings with defaults
func (s *Service) GetAll() (map[string]interface{}, error) {
	dbValues, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	result := make(map[string]interface{})
	for key, defaultValue := range SettingDefaults {
		if dbValue, exists := dbValues[key]; exists {
			// Check if this is a string setting
			if StringSettings[key] {
				result[key] = dbValue
			} else {
				// Parse as float
				if floatVal, err := strconv.ParseFloat(dbValue, 64); err == nil {
					result[key] = floatVal
				} else {
					result[key] = defaultValue
				}
			}
		} else {
			result[key] = defaultValue
		}
	}

	return result, nil
}

// Get retrieves a setting value with fallback to default
func (s *Service) Get(key string) (interface{}, error) {
	dbValue, err := s.repo.Get(key)
	if err != nil {
		return nil, err
	}

	if dbValue != nil {
		// Check if this is a string setting
		if StringSettings[key] {
			return *dbValue, nil
		}
		// Parse as float
		if floatVal, err := strconv.ParseFloat(*dbValue, 64); err == nil {
			return floatVal, nil
		}
	}

	// Return default
	defaultValue, exists := SettingDefaults[key]
	if !exists {
		return nil, fmt.Errorf("unknown setting: %s", key)
	}
	return defaultValue, nil
}

// Set updates a setting value with validation
func (s *Service) Set(key string, value interface{}) error {
	// Check if setting exists in defaults
	if _, exists := SettingDefaults[key]; !exists {
		return fmt.Errorf("unknown setting: %s", key)
	}

	// Special handling for noise_preset
	if key == "noise_preset" {
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("noise_preset must be a string")
		}
		return s.SetNoisePreset(name)
	}

	// Range validation for numeric settings
	if floatVal, ok := value.(float64); ok {
		switch key {
		case "fidelity_threshold":
			if floatVal < 0 || floatVal > 1 {
				return fmt.Errorf("fidelity_threshold must be between 0 and 1")
			}
		case "max_qubits":
			if floatVal < 1 || floatVal > float64(quantum.MaxQubits) {
				return fmt.Errorf("max_qubits must be between 1 and %d", quantum.MaxQubits)
			}
		case "default_timeout_ms":
			if floatVal <= 0 {
				return fmt.Errorf("default_timeout_ms must be positive")
			}
		case "sweep_workers", "sweep_max_steps":
			if floatVal < 1 {
				return fmt.Errorf("%s must be at least 1", key)
			}
		case "cache_clear_interval_hours", "job_checkpoint_minutes":
			if floatVal < 0 {
				return fmt.Errorf("%s must be non-negative", key)
			}
		case "job_vacuum_hour":
			if floatVal < 0 || floatVal > 23 {
				return fmt.Errorf("job_vacuum_hour must be between 0 and 23")
			}
		}
	}

	// Convert to string for storage
	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	case float64:
		strValue = fmt.Sprintf("%f", v)
	case int:
		strValue = fmt.Sprintf("%d", v)
	default:
		return fmt.Errorf("unsupported value type for setting %s", key)
	}

	return s.repo.Set(key, strValue, nil)
}

// GetNoisePreset retrieves the current noise preset name
func (s *Service) GetNoisePreset() (string, error) {
	value, err := s.repo.Get("noise_preset")
	if err != nil {
		return "", err
	}

	if value != nil {
		if _, known := NoisePresets[*value]; known {
			return *value, nil
		}
	}

	// Return default
	defaultPreset, _ := SettingDefaults["noise_preset"].(string)
	return defaultPreset, nil
}

// SetNoisePreset sets the noise preset with validation
func (s *Service) SetNoisePreset(name string) error {
	if _, known := NoisePresets[name]; !known {
		return fmt.Errorf("invalid noise preset: %s. Must be 'none', 'light', 'moderate' or 'heavy'", name)
	}

	desc := "Noise model applied when a request specifies none"
	return s.repo.Set("noise_preset", name, &desc)
}

// DefaultNoise resolves the current noise preset to a noise model.
// Returns nil when the preset is "none". The returned model is a copy,
// callers may mutate it freely.
func (s *Service) DefaultNoise() (*quantum.NoiseModel, error) {
	name, err := s.GetNoisePreset()
	if err != nil {
		return nil, err
	}

	preset := NoisePresets[name]
	if preset == nil {
		return nil, nil
	}

	model := *preset
	return &model, nil
}

// FidelityThreshold returns the validity cutoff, falling back to the
// default when the stored value is missing or malformed.
func (s *Service) FidelityThreshold() float64 {
	if value, err := s.Get("fidelity_threshold"); err == nil {
		if f, ok := value.(float64); ok {
			return f
		}
	}
	return SettingDefaults["fidelity_threshold"].(float64)
}

// DefaultTimeout returns the per-run wall clock budget
func (s *Service) DefaultTimeout() time.Duration {
	ms := SettingDefaults["default_timeout_ms"].(float64)
	if value, err := s.Get("default_timeout_ms"); err == nil {
		if f, ok := value.(float64); ok && f > 0 {
			ms = f
		}
	}
	return time.Duration(ms) * time.Millisecond
}

// MaxQubits returns the request register ceiling
func (s *Service) MaxQubits() int {
	if value, err := s.Get("max_qubits"); err == nil {
		if f, ok := value.(float64); ok && f >= 1 && f <= float64(quantum.MaxQubits) {
			return int(f)
		}
	}
	return int(SettingDefaults["max_qubits"].(float64))
}

// SweepWorkers returns the sweep evaluation concurrency
func (s *Service) SweepWorkers() int {
	if value, err := s.Get("sweep_workers"); err == nil {
		if f, ok := value.(float64); ok && f >= 1 {
			return int(f)
		}
	}
	return int(SettingDefaults["sweep_workers"].(float64))
}

// SweepMaxSteps returns the largest accepted sweep resolution
func (s *Service) SweepMaxSteps() int {
	if value, err := s.Get("sweep_max_steps"); err == nil {
		if f, ok := value.(float64); ok && f >= 1 {
			return int(f)
		}
	}
	return int(SettingDefaults["sweep_max_steps"].(float64))
}

// CacheEnabled reports whether repeat requests are served from the result cache
func (s *Service) CacheEnabled() bool {
	if value, err := s.Get("cache_enabled"); err == nil {
		if f, ok := value.(float64); ok {
			return f != 0
		}
	}
	return true
}

// CacheClearInterval returns the scheduled cache clear interval.
// Zero means the scheduled clear is disabled.
func (s *Service) CacheClearInterval() time.Duration {
	if value, err := s.Get("cache_clear_interval_hours"); err == nil {
		if f, ok := value.(float64); ok && f > 0 {
			return time.Duration(f * float64(time.Hour))
		}
	}
	return 0
}

// CheckpointInterval returns the WAL checkpoint cadence
func (s *Service) CheckpointInterval() time.Duration {
	minutes := SettingDefaults["job_checkpoint_minutes"].(float64)
	if value, err := s.Get("job_checkpoint_minutes"); err == nil {
		if f, ok := value.(float64); ok && f > 0 {
			minutes = f
		}
	}
	return time.Duration(minutes) * time.Minute
}

// VacuumHour returns the hour of day (0-23) the daily vacuum runs at
func (s *Service) VacuumHour() int {
	if value, err := s.Get("job_vacuum_hour"); err == nil {
		if f, ok := value.(float64); ok && f >= 0 && f <= 23 {
			return int(f)
		}
	}
	return int(SettingDefaults["job_vacuum_hour"].(float64))
}
