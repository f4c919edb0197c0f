package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/circuits"
	testingpkg "github.com/aristath/qsim/internal/testing"
)

func setupHandler(t *testing.T) (*Handler, *events.Bus) {
	t.Helper()

	db, cleanup := testingpkg.NewTestDBWithSchema(t, "circuits", circuits.CircuitsSchema)
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	repo := circuits.NewRepository(db.Conn(), log)
	bus := events.NewBus(log)
	manager := events.NewManager(bus, log)

	h := NewHandler(circuits.NewGenerator(), circuits.NewKeywordDetector(), repo, manager, log)
	return h, bus
}

func newRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", path, bytes.NewReader(payload)))
	return w
}

func TestHandleGenerate(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := postJSON(t, router, "/circuits/generate", GenerateRequest{Algorithm: "bell", Qubits: 2})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data CircuitResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, "Bell State", response.Data.Name)
	assert.Equal(t, "bell", response.Data.Algorithm)
	assert.Equal(t, 2, response.Data.Qubits)
	assert.Equal(t, 2, response.Data.GateCount)
	require.Len(t, response.Data.Gates, 2)
	assert.Equal(t, "h", string(response.Data.Gates[0].Kind))
	assert.Contains(t, response.Data.QASM, "OPENQASM 2.0")
	assert.Contains(t, response.Data.QASM, "cx q[0], q[1];")
}

func TestHandleGenerate_FromDescription(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := postJSON(t, router, "/circuits/generate", GenerateRequest{Description: "search an unstructured database", Qubits: 3})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data CircuitResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "grover", response.Data.Algorithm)
}

func TestHandleGenerate_UnknownAlgorithm(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := postJSON(t, router, "/circuits/generate", GenerateRequest{Algorithm: "annealing", Qubits: 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid parameter algorithm")
}

func TestHandleGenerate_QubitMinimum(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := postJSON(t, router, "/circuits/generate", GenerateRequest{Algorithm: "ghz", Qubits: 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "requires at least 3 qubits")
}

func TestHandleAlgorithms(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/algorithms", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Algorithms []circuits.AlgorithmInfo `json:"algorithms"`
			Count      int                      `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, 9, response.Data.Count)
	require.NotEmpty(t, response.Data.Algorithms)
	assert.Equal(t, "bell", string(response.Data.Algorithms[0].ID))
	assert.Equal(t, 2, response.Data.Algorithms[0].MinQubits)
}

func TestSaveAndGetCircuit(t *testing.T) {
	h, bus := setupHandler(t)
	router := newRouter(h)

	eventCh := bus.Subscribe(events.CircuitSaved)
	defer bus.Unsubscribe(eventCh)

	w := postJSON(t, router, "/circuits/library", SaveCircuitRequest{
		Name:      "Demo Bell",
		Algorithm: "bell",
		Qubits:    2,
		Tags:      []string{"demo", "entanglement"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var saved struct {
		Data circuits.StoredCircuit `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&saved))

	assert.Greater(t, saved.Data.ID, int64(0))
	assert.Equal(t, "Demo Bell", saved.Data.Name)
	assert.Equal(t, "bell", saved.Data.Algorithm)
	assert.Equal(t, []string{"demo", "entanglement"}, saved.Data.Tags)
	assert.Contains(t, saved.Data.QASM, "OPENQASM 2.0")
	assert.False(t, saved.Data.CreatedAt.IsZero())

	select {
	case ev := <-eventCh:
		assert.Equal(t, events.CircuitSaved, ev.Type)
		assert.Equal(t, "Demo Bell", ev.Data["name"])
	default:
		t.Fatal("expected a CIRCUIT_SAVED event")
	}

	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, httptest.NewRequest("GET", "/circuits/library/1", nil))
	require.Equal(t, http.StatusOK, getRec.Code)

	var fetched struct {
		Data circuits.StoredCircuit `json:"data"`
	}
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&fetched))
	assert.Equal(t, saved.Data.ID, fetched.Data.ID)
	assert.Equal(t, "Demo Bell", fetched.Data.Name)
}

func TestSaveCircuit_RequiresName(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := postJSON(t, router, "/circuits/library", SaveCircuitRequest{Algorithm: "bell", Qubits: 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required")
}

func TestSaveCircuit_CustomQASM(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	qasm := "OPENQASM 2.0;\nqreg q[1];\nh q[0];\n"
	w := postJSON(t, router, "/circuits/library", SaveCircuitRequest{
		Name:      "Hand Rolled",
		Algorithm: "generic",
		Qubits:    1,
		QASM:      qasm,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var saved struct {
		Data circuits.StoredCircuit `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&saved))
	assert.Equal(t, qasm, saved.Data.QASM)
}

func TestListCircuits_Filters(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/circuits/library", SaveCircuitRequest{
		Name: "Bell A", Algorithm: "bell", Qubits: 2, Tags: []string{"demo"},
	}).Code)
	require.Equal(t, http.StatusCreated, postJSON(t, router, "/circuits/library", SaveCircuitRequest{
		Name: "GHZ A", Algorithm: "ghz", Qubits: 3, Tags: []string{"bench"},
	}).Code)

	type listResponse struct {
		Data struct {
			Circuits []circuits.StoredCircuit `json:"circuits"`
			Count    int                      `json:"count"`
		} `json:"data"`
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var all listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	assert.Equal(t, 2, all.Data.Count)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/?algorithm=bell", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var byAlgorithm listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&byAlgorithm))
	require.Equal(t, 1, byAlgorithm.Data.Count)
	assert.Equal(t, "Bell A", byAlgorithm.Data.Circuits[0].Name)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/?tag=bench", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var byTag listResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&byTag))
	require.Equal(t, 1, byTag.Data.Count)
	assert.Equal(t, "GHZ A", byTag.Data.Circuits[0].Name)
}

func TestListCircuits_Empty(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Body.String(), `"circuits":[]`)
}

func TestGetCircuit_NotFound(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid circuit ID")
}

func TestDeleteCircuit(t *testing.T) {
	h, bus := setupHandler(t)
	router := newRouter(h)

	eventCh := bus.Subscribe(events.CircuitDeleted)
	defer bus.Unsubscribe(eventCh)

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/circuits/library", SaveCircuitRequest{
		Name: "Short Lived", Algorithm: "bell", Qubits: 2,
	}).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/circuits/library/1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case ev := <-eventCh:
		assert.Equal(t, events.CircuitDeleted, ev.Type)
		assert.Equal(t, 1.0, ev.Data["circuit_id"])
	default:
		t.Fatal("expected a CIRCUIT_DELETED event")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/circuits/library/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCircuitQASM(t *testing.T) {
	h, _ := setupHandler(t)
	router := newRouter(h)

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/circuits/library", SaveCircuitRequest{
		Name: "QFT Export", Algorithm: "qft", Qubits: 3,
	}).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/1/qasm", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "OPENQASM 2.0")
	assert.Contains(t, w.Body.String(), "qreg q[3];")
	assert.Contains(t, w.Body.String(), "cu1(pi/2)")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/circuits/library/7/qasm", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
