// Package handlers provides HTTP handlers for inequality index computations.
package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/httpapi"
	"github.com/aristath/kafkanator/internal/modules/indices"
	"github.com/aristath/kafkanator/internal/modules/recode"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// DatasetLoader resolves dataset sources.
type DatasetLoader interface {
	Load(ctx context.Context, src dataset.Source) (*dataset.Table, error)
}

// Handler handles index HTTP requests
type Handler struct {
	service *indices.Service
	loader  DatasetLoader
	log     zerolog.Logger
}

// NewHandler creates a new indices handler
func NewHandler(service *indices.Service, loader DatasetLoader, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		loader:  loader,
		log:     log.With().Str("handler", "indices").Logger(),
	}
}

// ComputeRequest runs an index over raw values
type ComputeRequest struct {
	Kind   string    `json:"kind" validate:"required"`
	Values []float64 `json:"values"`
	Mode   string    `json:"mode,omitempty"`
	Base   float64   `json:"base,omitempty"`
}

// LorentzRequest builds a Lorentz curve from a weighted population
type LorentzRequest struct {
	Population []float64 `json:"population"`
	Income     []float64 `json:"income"`
	Gini       bool      `json:"gini,omitempty"`
}

// ColumnRequest runs an index over one column of a dataset
type ColumnRequest struct {
	Source dataset.Source `json:"source"`
	Column string         `json:"column" validate:"required"`
	Kind   string         `json:"kind" validate:"required"`
	Mode   string         `json:"mode,omitempty"`
	Base   float64        `json:"base,omitempty"`
}

// ClustersRequest runs an index over every group of a dataset
type ClustersRequest struct {
	Source       dataset.Source `json:"source"`
	GroupColumn  string         `json:"group_column" validate:"required"`
	IncomeColumn string         `json:"income_column" validate:"required"`
	Kind         string         `json:"kind" validate:"required"`
	Mode         string         `json:"mode,omitempty"`
	Base         float64        `json:"base,omitempty"`
	Recode       []recode.Step  `json:"recode,omitempty"`
}

// parseIndex turns the request strings into a kind and parameters.
func parseIndex(kind, mode string, base float64) (inequality.Kind, inequality.Params, error) {
	k, err := inequality.ParseKind(kind)
	if err != nil {
		return "", inequality.Params{}, err
	}
	m, err := inequality.ParseMode(mode)
	if err != nil {
		return "", inequality.Params{}, err
	}
	return k, inequality.Params{Mode: m, Base: base}, nil
}

// HandleCompute handles POST /api/indices/compute
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	kind, params, err := parseIndex(req.Kind, req.Mode, req.Base)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	value, err := h.service.Compute(kind, req.Values, params)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"kind":  kind,
		"n":     len(req.Values),
		"value": value,
	})
}

// HandleLorentz handles POST /api/indices/lorentz
func (h *Handler) HandleLorentz(w http.ResponseWriter, r *http.Request) {
	var req LorentzRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	curve, err := h.service.Lorentz(req.Population, req.Income, req.Gini)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, curve)
}

// HandleColumn handles POST /api/indices/column
func (h *Handler) HandleColumn(w http.ResponseWriter, r *http.Request) {
	var req ColumnRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	kind, params, err := parseIndex(req.Kind, req.Mode, req.Base)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	table, err := h.loader.Load(r.Context(), req.Source)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	value, err := h.service.IndexOnColumn(r.Context(), table, req.Column, kind, params)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"kind":   kind,
		"column": req.Column,
		"rows":   table.Len(),
		"value":  value,
	})
}

// HandleClusters handles POST /api/indices/clusters
func (h *Handler) HandleClusters(w http.ResponseWriter, r *http.Request) {
	var req ClustersRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	kind, params, err := parseIndex(req.Kind, req.Mode, req.Base)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	table, err := h.loader.Load(r.Context(), req.Source)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	table, err = recode.Apply(table, req.Recode)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	results, err := h.service.IndexPerCluster(r.Context(), table, req.GroupColumn, req.IncomeColumn, kind, params)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	indices.SortByGroup(results)

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"kind":          kind,
		"group_column":  req.GroupColumn,
		"income_column": req.IncomeColumn,
		"clusters":      results,
	})
}
