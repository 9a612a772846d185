package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all fairness routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fairness", func(r chi.Router) {
		r.Post("/parity", h.HandleParity)
		r.Post("/error-rates", h.HandleErrorRates)
	})
}
