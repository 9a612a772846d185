// Package handlers provides HTTP handlers for fairness tables.
package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/httpapi"
	"github.com/aristath/kafkanator/internal/modules/fairness"
)

// DatasetLoader resolves dataset sources.
type DatasetLoader interface {
	Load(ctx context.Context, src dataset.Source) (*dataset.Table, error)
}

// Handler handles fairness HTTP requests
type Handler struct {
	loader DatasetLoader
	log    zerolog.Logger
}

// NewHandler creates a new fairness handler
func NewHandler(loader DatasetLoader, log zerolog.Logger) *Handler {
	return &Handler{
		loader: loader,
		log:    log.With().Str("handler", "fairness").Logger(),
	}
}

// ParityRequest counts predictions per sensitive attribute value
type ParityRequest struct {
	Source     dataset.Source `json:"source"`
	Sensitive  string         `json:"sensitive" validate:"required"`
	Prediction string         `json:"prediction,omitempty"`
}

// ErrorRatesRequest computes per-group error rates of a binary classifier
type ErrorRatesRequest struct {
	Source     dataset.Source `json:"source"`
	Sensitive  string         `json:"sensitive" validate:"required"`
	Label      string         `json:"label,omitempty"`
	Prediction string         `json:"prediction,omitempty"`
}

// HandleParity handles POST /api/fairness/parity
func (h *Handler) HandleParity(w http.ResponseWriter, r *http.Request) {
	var req ParityRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	table, err := h.loader.Load(r.Context(), req.Source)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	prediction := req.Prediction
	if prediction == "" {
		prediction = fairness.DefaultPredictionColumn
	}

	rows, err := fairness.StatisticalParity(table, req.Sensitive, prediction)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"sensitive": req.Sensitive,
		"rows":      rows,
	})
}

// HandleErrorRates handles POST /api/fairness/error-rates
func (h *Handler) HandleErrorRates(w http.ResponseWriter, r *http.Request) {
	var req ErrorRatesRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	table, err := h.loader.Load(r.Context(), req.Source)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	rates, err := fairness.ErrorRates(table, req.Sensitive, req.Label, req.Prediction)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"sensitive": req.Sensitive,
		"groups":    rates,
	})
}
