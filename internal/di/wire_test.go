package di

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWire(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), Workers: 2}

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.EventManager)
	assert.NotNil(t, container.SettingsRepo)
	assert.NotNil(t, container.SettingsService)
	assert.NotNil(t, container.CircuitRepo)
	assert.NotNil(t, container.Generator)
	assert.NotNil(t, container.Detector)
	assert.NotNil(t, container.Evaluator)
	assert.NotNil(t, container.SimulationService)
	assert.NotNil(t, container.ResultCache)
	assert.NotNil(t, container.SweepArchive)
	assert.NotNil(t, container.Processor)
}

func TestWire_SettingsRoundTrip(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), Workers: 1}

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	require.NoError(t, container.SettingsService.Set("max_qubits", 12.0))
	assert.Equal(t, 12, container.SettingsService.MaxQubits())
}

func TestWire_AppliesSettingOverrides(t *testing.T) {
	cfg := &config.Config{
		DataDir:           t.TempDir(),
		Workers:           1,
		MaxQubits:         10,
		DefaultTimeoutMS:  5000,
		FidelityThreshold: 0.9,
	}

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Equal(t, 10, container.SettingsService.MaxQubits())
	assert.Equal(t, 5*time.Second, container.SettingsService.DefaultTimeout())
	assert.InDelta(t, 0.9, container.SettingsService.FidelityThreshold(), 1e-9)
}

func TestWire_SimulatesThroughContainer(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), Workers: 1}

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer func() {
		container.SimulationService.Shutdown()
		container.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := container.SimulationService.Simulate(ctx, domain.SimulationRequest{
		Algorithm: domain.AlgorithmBell,
		Qubits:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AlgorithmBell, result.Algorithm)
	assert.InDelta(t, 0.98, result.Fidelity, 1e-9)
}

func TestContainer_CloseIsIdempotent(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), Workers: 1}

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, container.Close())
	require.NoError(t, container.Close())
}
