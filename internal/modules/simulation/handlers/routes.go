package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/simulations", func(r chi.Router) {
		r.Post("/run", h.HandleRun)
		r.Post("/sweep", h.HandleEnqueueSweep)
		r.Get("/sweep/{id}", h.HandleSweepStatus)
		r.Get("/cache/stats", h.HandleCacheStats)
		r.Post("/cache/clear", h.HandleCacheClear)
	})
}
