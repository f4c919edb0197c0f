package circuits

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/domain"
	testingpkg "github.com/aristath/qsim/internal/testing"
)

func setupRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDBWithSchema(t, "circuits", CircuitsSchema)
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewRepository(db.Conn(), log), cleanup
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	generated, err := NewGenerator().Generate(domain.AlgorithmBell, 2)
	require.NoError(t, err)

	id, err := repo.Save(&StoredCircuit{
		Name:        "My Bell",
		Algorithm:   "bell",
		Qubits:      2,
		Description: "pair for the demo",
		Tags:        []string{"entanglement", "demo"},
		QASM:        ExportQASM(generated),
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := repo.Get(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "My Bell", got.Name)
	assert.Equal(t, "bell", got.Algorithm)
	assert.Equal(t, 2, got.Qubits)
	assert.Equal(t, []string{"entanglement", "demo"}, got.Tags)
	assert.Contains(t, got.QASM, "cx q[0], q[1];")
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestRepository_GetMissingReturnsNil(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	got, err := repo.Get(9999)
	require.NoError(t, err, "a missing circuit is not an error")
	assert.Nil(t, got)
}

func TestRepository_ListAndFilter(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	save := func(name, algorithm string, tags []string) int64 {
		id, err := repo.Save(&StoredCircuit{Name: name, Algorithm: algorithm, Qubits: 3, QASM: "OPENQASM 2.0;", Tags: tags})
		require.NoError(t, err)
		return id
	}
	save("first bell", "bell", []string{"demo"})
	save("second bell", "bell", nil)
	lastID := save("fourier", "qft", []string{"transform", "demo"})

	all, err := repo.List(ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, lastID, all[0].ID, "newest first")

	bells, err := repo.List(ListFilter{Algorithm: "bell"})
	require.NoError(t, err)
	assert.Len(t, bells, 2)

	demos, err := repo.List(ListFilter{Tag: "demo"})
	require.NoError(t, err)
	assert.Len(t, demos, 2)

	both, err := repo.List(ListFilter{Algorithm: "qft", Tag: "demo"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "fourier", both[0].Name)
}

func TestRepository_SaveUpdatesExisting(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	id, err := repo.Save(&StoredCircuit{Name: "draft", Algorithm: "generic", Qubits: 1, QASM: "OPENQASM 2.0;"})
	require.NoError(t, err)

	updatedID, err := repo.Save(&StoredCircuit{ID: id, Name: "final", Algorithm: "generic", Qubits: 1, QASM: "OPENQASM 2.0;"})
	require.NoError(t, err)
	assert.Equal(t, id, updatedID)

	got, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Name)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "update must not insert a second row")
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	id, err := repo.Save(&StoredCircuit{Name: "gone soon", Algorithm: "bell", Qubits: 2, QASM: "OPENQASM 2.0;"})
	require.NoError(t, err)

	existed, err := repo.Delete(id)
	require.NoError(t, err)
	assert.True(t, existed)

	got, err := repo.Get(id)
	require.NoError(t, err)
	assert.Nil(t, got)

	existed, err = repo.Delete(id)
	require.NoError(t, err)
	assert.False(t, existed, "second delete finds nothing")
}
