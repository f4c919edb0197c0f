package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all circuit routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/circuits", func(r chi.Router) {
		r.Post("/generate", h.HandleGenerate)
		r.Get("/algorithms", h.HandleAlgorithms)
		r.Route("/library", func(r chi.Router) {
			r.Post("/", h.HandleSaveCircuit)
			r.Get("/", h.HandleListCircuits)
			r.Get("/{id}", h.HandleGetCircuit)
			r.Delete("/{id}", h.HandleDeleteCircuit)
			r.Get("/{id}/qasm", h.HandleCircuitQASM)
		})
	})
}
