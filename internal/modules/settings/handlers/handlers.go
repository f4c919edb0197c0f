// Package handlers provides HTTP handlers for runtime settings management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/qsim/internal/events"
	"github.com/aristath/qsim/internal/modules/settings"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides HTTP handlers for settings endpoints
type Handler struct {
	service      *settings.Service
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		eventManager: eventManager,
		log:          log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	values, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get all settings")
		http.Error(w, "Failed to get settings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(values); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode settings response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// HandleGet handles GET /api/settings/{key}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "Key is required", http.StatusBadRequest)
		return
	}

	value, err := h.service.Get(key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	result := map[string]interface{}{key: value}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleUpdate handles PUT /api/settings/{key}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "Key is required", http.StatusBadRequest)
		return
	}

	var update settings.SettingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Set(key, update.Value); err != nil {
		h.log.Error().
			Err(err).
			Str("key", key).
			Interface("value", update.Value).
			Msg("Failed to update setting")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Emit SETTINGS_CHANGED event
	if h.eventManager != nil {
		h.eventManager.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
			Key:   key,
			Value: update.Value,
		})
	}

	// Return updated value
	result := map[string]interface{}{key: update.Value}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetNoisePreset handles GET /api/settings/noise-preset
func (h *Handler) HandleGetNoisePreset(w http.ResponseWriter, r *http.Request) {
	preset, err := h.service.GetNoisePreset()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get noise preset")
		http.Error(w, "Failed to get noise preset", http.StatusInternalServerError)
		return
	}

	response := settings.NoisePresetResponse{NoisePreset: preset}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleSetNoisePreset handles POST /api/settings/noise-preset
func (h *Handler) HandleSetNoisePreset(w http.ResponseWriter, r *http.Request) {
	var update settings.SettingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name, ok := update.Value.(string)
	if !ok {
		http.Error(w, "Noise preset must be a string", http.StatusBadRequest)
		return
	}

	previous, err := h.service.GetNoisePreset()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read current noise preset")
		http.Error(w, "Failed to read current noise preset", http.StatusInternalServerError)
		return
	}

	if err := h.service.SetNoisePreset(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.log.Info().
		Str("previous_preset", previous).
		Str("new_preset", name).
		Msg("Noise preset changed")

	if h.eventManager != nil {
		h.eventManager.EmitTyped(events.SettingsChanged, "settings", &events.SettingsChangedData{
			Key:   "noise_preset",
			Value: name,
		})
	}

	response := map[string]string{
		"noise_preset":    name,
		"previous_preset": previous,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
