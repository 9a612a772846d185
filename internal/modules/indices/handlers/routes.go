package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all index routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/indices", func(r chi.Router) {
		r.Post("/compute", h.HandleCompute)
		r.Post("/lorentz", h.HandleLorentz)
		r.Post("/column", h.HandleColumn)
		r.Post("/clusters", h.HandleClusters)
	})
}
