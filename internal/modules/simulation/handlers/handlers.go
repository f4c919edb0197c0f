// Package handlers provides HTTP handlers for simulation runs, noise sweeps
// and the result cache.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/qsim/internal/domain"
	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/simulation"
	"github.com/aristath/qsim/internal/quantum"
	"github.com/aristath/qsim/internal/work"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles simulation HTTP requests
type Handler struct {
	service      *simulation.Service
	processor    *work.Processor
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(
	service *simulation.Service,
	processor *work.Processor,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:      service,
		processor:    processor,
		eventManager: eventManager,
		log:          log.With().Str("handler", "simulation").Logger(),
	}
}

// RunRequest represents a request to run one simulation
type RunRequest struct {
	Algorithm   string              `json:"algorithm,omitempty"`
	Description string              `json:"description,omitempty"`
	Qubits      int                 `json:"qubits"`
	Noise       *quantum.NoiseModel `json:"noise,omitempty"`
	TimeoutMS   float64             `json:"timeout_ms,omitempty"`
}

// HandleRun handles POST /api/simulations/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	simReq := domain.SimulationRequest{
		Algorithm:   domain.AlgorithmID(req.Algorithm),
		Description: req.Description,
		Qubits:      req.Qubits,
		Noise:       req.Noise,
	}
	if req.TimeoutMS > 0 {
		simReq.Timeout = time.Duration(req.TimeoutMS * float64(time.Millisecond))
	}

	result, err := h.service.Simulate(r.Context(), simReq)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("algorithm", req.Algorithm).
			Int("qubits", req.Qubits).
			Msg("Simulation request failed")
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleEnqueueSweep handles POST /api/simulations/sweep
func (h *Handler) HandleEnqueueSweep(w http.ResponseWriter, r *http.Request) {
	var req work.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.processor.Enqueue(req)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("algorithm", string(req.Algorithm)).
			Str("parameter", string(req.Parameter)).
			Msg("Sweep rejected")
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"sweep_id": id,
			"state":    string(work.SweepStateQueued),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	// 202 Accepted for async processing
	h.writeJSON(w, http.StatusAccepted, response)
}

// HandleSweepStatus handles GET /api/simulations/sweep/{id}
func (h *Handler) HandleSweepStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Sweep ID is required", http.StatusBadRequest)
		return
	}

	status, ok := h.processor.Status(id)
	if !ok {
		http.Error(w, "Sweep not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": status,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleCacheStats handles GET /api/simulations/cache/stats
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": map[string]interface{}{
			"entries": h.service.Cache().Len(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleCacheClear handles POST /api/simulations/cache/clear
func (h *Handler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	cleared := h.service.Cache().Clear()

	h.log.Info().Int("entries", cleared).Msg("Result cache cleared")

	if h.eventManager != nil {
		h.eventManager.EmitTyped(events.CacheCleared, "simulation", &events.CacheClearedData{
			Entries: cleared,
			Source:  "api",
		})
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"cleared": cleared,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// statusForError maps simulation failures onto HTTP status codes. Capacity
// rejections split on Detail: the memory guard's pressure rejections carry one
// and surface as 507, the hard qubit ceiling does not and stays a 400.
func statusForError(err error) int {
	var paramErr *quantum.ParameterError
	if errors.As(err, &paramErr) {
		return http.StatusBadRequest
	}
	var resErr *quantum.ResourceError
	if errors.As(err, &resErr) {
		if resErr.Detail != "" {
			return http.StatusInsufficientStorage
		}
		return http.StatusBadRequest
	}
	var timeoutErr *quantum.TimeoutError
	if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, simulation.ErrShutdown) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
