// Package handlers provides HTTP handlers for circuit generation and the
// circuit library.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/circuits"
	"github.com/aristath/qsim/internal/quantum"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles circuit HTTP requests
type Handler struct {
	generator    *circuits.Generator
	detector     *circuits.KeywordDetector
	repo         *circuits.Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new circuits handler
func NewHandler(
	generator *circuits.Generator,
	detector *circuits.KeywordDetector,
	repo *circuits.Repository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		generator:    generator,
		detector:     detector,
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("handler", "circuits").Logger(),
	}
}

// GenerateRequest represents a request to build a circuit
type GenerateRequest struct {
	Algorithm   string `json:"algorithm,omitempty"`
	Description string `json:"description,omitempty"`
	Qubits      int    `json:"qubits"`
}

// CircuitResponse is the wire form of a generated circuit
type CircuitResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Algorithm   string         `json:"algorithm"`
	Complexity  string         `json:"complexity,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Gates       []quantum.Gate `json:"gates"`
	Qubits      int            `json:"qubits"`
	Depth       int            `json:"depth"`
	GateCount   int            `json:"gate_count"`
	QASM        string         `json:"qasm"`
}

// SaveCircuitRequest represents a request to store a circuit definition
type SaveCircuitRequest struct {
	Name        string   `json:"name"`
	Algorithm   string   `json:"algorithm,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	QASM        string   `json:"qasm,omitempty"`
	Qubits      int      `json:"qubits"`
}

// HandleGenerate handles POST /api/circuits/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.resolveAlgorithm(req.Algorithm, req.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	circuit, err := h.generator.Generate(id, req.Qubits)
	if err != nil {
		var paramErr *quantum.ParameterError
		if errors.As(err, &paramErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("algorithm", string(id)).Msg("Circuit generation failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": circuitResponse(circuit),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleAlgorithms handles GET /api/circuits/algorithms
func (h *Handler) HandleAlgorithms(w http.ResponseWriter, r *http.Request) {
	catalog := h.generator.Catalog()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"algorithms": catalog,
			"count":      len(catalog),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSaveCircuit handles POST /api/circuits/library
func (h *Handler) HandleSaveCircuit(w http.ResponseWriter, r *http.Request) {
	var req SaveCircuitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	id, err := h.resolveAlgorithm(req.Algorithm, req.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	qasm := req.QASM
	if qasm == "" {
		circuit, err := h.generator.Generate(id, req.Qubits)
		if err != nil {
			var paramErr *quantum.ParameterError
			if errors.As(err, &paramErr) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.log.Error().Err(err).Str("algorithm", string(id)).Msg("Circuit generation failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		qasm = circuits.ExportQASM(circuit)
	}

	stored := &circuits.StoredCircuit{
		Name:        req.Name,
		Algorithm:   string(id),
		Qubits:      req.Qubits,
		Description: req.Description,
		Tags:        req.Tags,
		QASM:        qasm,
	}

	circuitID, err := h.repo.Save(stored)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to save circuit")
		http.Error(w, "Failed to save circuit", http.StatusInternalServerError)
		return
	}

	saved, err := h.repo.Get(circuitID)
	if err != nil || saved == nil {
		h.log.Error().Err(err).Int64("id", circuitID).Msg("Failed to read saved circuit")
		http.Error(w, "Failed to read saved circuit", http.StatusInternalServerError)
		return
	}

	if h.eventManager != nil {
		h.eventManager.EmitTyped(events.CircuitSaved, "circuits", &events.CircuitSavedData{
			CircuitID: circuitID,
			Name:      saved.Name,
			Algorithm: saved.Algorithm,
			Qubits:    saved.Qubits,
		})
	}

	response := map[string]interface{}{
		"data": saved,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusCreated, response)
}

// HandleListCircuits handles GET /api/circuits/library
func (h *Handler) HandleListCircuits(w http.ResponseWriter, r *http.Request) {
	filter := circuits.ListFilter{
		Algorithm: r.URL.Query().Get("algorithm"),
		Tag:       r.URL.Query().Get("tag"),
	}

	list, err := h.repo.List(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list circuits")
		http.Error(w, "Failed to list circuits", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []circuits.StoredCircuit{}
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"circuits": list,
			"count":    len(list),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetCircuit handles GET /api/circuits/library/{id}
func (h *Handler) HandleGetCircuit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.circuitID(w, r)
	if !ok {
		return
	}

	circuit, err := h.repo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to get circuit")
		http.Error(w, "Failed to get circuit", http.StatusInternalServerError)
		return
	}
	if circuit == nil {
		http.Error(w, "Circuit not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": circuit,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDeleteCircuit handles DELETE /api/circuits/library/{id}
func (h *Handler) HandleDeleteCircuit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.circuitID(w, r)
	if !ok {
		return
	}

	existed, err := h.repo.Delete(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete circuit")
		http.Error(w, "Failed to delete circuit", http.StatusInternalServerError)
		return
	}
	if !existed {
		http.Error(w, "Circuit not found", http.StatusNotFound)
		return
	}

	if h.eventManager != nil {
		h.eventManager.EmitTyped(events.CircuitDeleted, "circuits", &events.CircuitDeletedData{
			CircuitID: id,
		})
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"deleted": true,
			"id":      id,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleCircuitQASM handles GET /api/circuits/library/{id}/qasm
func (h *Handler) HandleCircuitQASM(w http.ResponseWriter, r *http.Request) {
	id, ok := h.circuitID(w, r)
	if !ok {
		return
	}

	circuit, err := h.repo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to get circuit")
		http.Error(w, "Failed to get circuit", http.StatusInternalServerError)
		return
	}
	if circuit == nil {
		http.Error(w, "Circuit not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(circuit.QASM)); err != nil {
		h.log.Error().Err(err).Msg("Failed to write QASM response")
	}
}

// resolveAlgorithm picks the template family the same way the simulation
// service does: an explicit identifier wins, otherwise the description goes
// through the detector.
func (h *Handler) resolveAlgorithm(algorithm, description string) (domain.AlgorithmID, error) {
	if algorithm != "" {
		id, ok := domain.ParseAlgorithmID(algorithm)
		if !ok {
			return "", &quantum.ParameterError{
				Param:  "algorithm",
				Value:  algorithm,
				Reason: "unknown algorithm identifier",
			}
		}
		return id, nil
	}
	return h.detector.Detect(description), nil
}

// circuitID parses the {id} route parameter, writing the error response
// itself when the value is unusable.
func (h *Handler) circuitID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid circuit ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// circuitResponse flattens a circuit into its wire form.
func circuitResponse(c *quantum.Circuit) CircuitResponse {
	return CircuitResponse{
		Name:        c.Name(),
		Description: c.Description(),
		Algorithm:   c.Algorithm(),
		Complexity:  c.Complexity(),
		Tags:        c.Tags(),
		Gates:       c.Gates(),
		Qubits:      c.NumQubits(),
		Depth:       c.Depth(),
		GateCount:   c.GateCount(),
		QASM:        circuits.ExportQASM(c),
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
