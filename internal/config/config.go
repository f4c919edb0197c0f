// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/qsim/internal/quantum"
)

// Config holds application configuration
type Config struct {
	DataDir            string   // Base directory for all databases (always absolute)
	LogLevel           string   // debug, info, warn, error
	LogPretty          bool     // Human-readable console output instead of JSON
	Port               int      // HTTP listen port
	DevMode            bool     // Disables response compression
	Workers            int      // Simulation worker pool size
	SweepRetentionDays int      // Archived sweeps older than this are pruned (0 keeps everything)
	CacheSweep         bool     // Enable the scheduled result cache clear job
	CORSOrigins        []string // Allowed CORS origins

	// Startup overrides for stored settings. Zero values leave the stored
	// settings untouched.
	MaxQubits         int
	DefaultTimeoutMS  int
	FidelityThreshold float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Data directory: resolve to an absolute path and make sure it exists,
	// the databases live under it.
	dataDir := getEnv("QSIM_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		LogLevel:           getEnv("QSIM_LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("QSIM_LOG_PRETTY", false),
		Port:               getEnvAsInt("QSIM_PORT", 8080),
		DevMode:            getEnvAsBool("QSIM_DEV_MODE", false),
		Workers:            getEnvAsInt("QSIM_WORKERS", 4),
		SweepRetentionDays: getEnvAsInt("QSIM_SWEEP_RETENTION_DAYS", 30),
		CacheSweep:         getEnvAsBool("QSIM_CACHE_SWEEP", true),
		CORSOrigins:        splitOrigins(getEnv("QSIM_CORS_ORIGINS", "*")),
		MaxQubits:          getEnvAsInt("QSIM_MAX_QUBITS", 0),
		DefaultTimeoutMS:   getEnvAsInt("QSIM_DEFAULT_TIMEOUT_MS", 0),
		FidelityThreshold:  getEnvAsFloat("QSIM_FIDELITY_THRESHOLD", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Workers)
	}
	if c.SweepRetentionDays < 0 {
		return fmt.Errorf("sweep retention must not be negative, got %d days", c.SweepRetentionDays)
	}
	if c.MaxQubits != 0 && (c.MaxQubits < 1 || c.MaxQubits > quantum.MaxQubits) {
		return fmt.Errorf("max qubits override must be between 1 and %d, got %d", quantum.MaxQubits, c.MaxQubits)
	}
	if c.DefaultTimeoutMS < 0 {
		return fmt.Errorf("default timeout must not be negative, got %dms", c.DefaultTimeoutMS)
	}
	if c.FidelityThreshold < 0 || c.FidelityThreshold > 1 {
		return fmt.Errorf("fidelity threshold override must be between 0 and 1, got %g", c.FidelityThreshold)
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}
	return nil
}

// SweepRetention returns the archive retention as a duration. Zero means
// archived sweeps are kept indefinitely.
func (c *Config) SweepRetention() time.Duration {
	return time.Duration(c.SweepRetentionDays) * 24 * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// splitOrigins parses a comma-separated origin list.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
