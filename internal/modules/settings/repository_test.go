package settings

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/aristath/qsim/internal/testing"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	db, cleanup := testingpkg.NewTestDBWithSchema(t, "settings", SettingsSchema)
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	return NewRepository(db.Conn(), log)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := setupRepo(t)

	value, err := repo.Get("does_not_exist")
	require.NoError(t, err)
	assert.Nil(t, value, "missing settings should return nil, not an error")
}

func TestRepository_SetAndGet(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Set("noise_preset", "light", nil)
	require.NoError(t, err)

	value, err := repo.Get("noise_preset")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "light", *value)
}

func TestRepository_SetUpserts(t *testing.T) {
	repo := setupRepo(t)

	desc := "Validity cutoff"
	require.NoError(t, repo.Set("fidelity_threshold", "0.950000", &desc))
	require.NoError(t, repo.Set("fidelity_threshold", "0.900000", nil))

	value, err := repo.Get("fidelity_threshold")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "0.900000", *value)
}

func TestRepository_GetFloat(t *testing.T) {
	repo := setupRepo(t)

	// Missing key returns the default.
	val, err := repo.GetFloat("fidelity_threshold", 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.95, val)

	require.NoError(t, repo.SetFloat("fidelity_threshold", 0.9))
	val, err = repo.GetFloat("fidelity_threshold", 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, val, 1e-9)

	// Malformed values fall back to the default without erroring.
	require.NoError(t, repo.Set("fidelity_threshold", "not-a-number", nil))
	val, err = repo.GetFloat("fidelity_threshold", 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.95, val)
}

func TestRepository_GetIntParsesFloatStrings(t *testing.T) {
	repo := setupRepo(t)

	// Values saved through the float path look like "4.000000".
	require.NoError(t, repo.SetFloat("sweep_workers", 4.0))

	val, err := repo.GetInt("sweep_workers", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, val)

	require.NoError(t, repo.SetInt("sweep_workers", 8))
	val, err = repo.GetInt("sweep_workers", 2)
	require.NoError(t, err)
	assert.Equal(t, 8, val)
}

func TestRepository_GetBool(t *testing.T) {
	repo := setupRepo(t)

	testCases := []struct {
		stored   string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"anything", false},
	}

	for _, tc := range testCases {
		t.Run(tc.stored, func(t *testing.T) {
			require.NoError(t, repo.Set("cache_enabled", tc.stored, nil))
			val, err := repo.GetBool("cache_enabled", false)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, val)
		})
	}

	// Missing key returns the default.
	val, err := repo.GetBool("missing_flag", true)
	require.NoError(t, err)
	assert.True(t, val)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Set("noise_preset", "heavy", nil))
	require.NoError(t, repo.Delete("noise_preset"))

	value, err := repo.Get("noise_preset")
	require.NoError(t, err)
	assert.Nil(t, value)

	// Deleting a missing key is not an error.
	require.NoError(t, repo.Delete("noise_preset"))
}

func TestRepository_GetAll(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Set("noise_preset", "moderate", nil))
	require.NoError(t, repo.SetFloat("sweep_workers", 6))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "moderate", all["noise_preset"])
}
