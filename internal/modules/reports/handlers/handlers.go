// Package handlers provides HTTP handlers for saved reports.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/dataset"
	"github.com/aristath/kafkanator/internal/events"
	"github.com/aristath/kafkanator/internal/httpapi"
	"github.com/aristath/kafkanator/internal/modules/recode"
	"github.com/aristath/kafkanator/internal/modules/reports"
	"github.com/aristath/kafkanator/pkg/inequality"
)

// Scheduler keeps scheduled reports registered while definitions change.
type Scheduler interface {
	ScheduleReport(def reports.Definition) error
	UnscheduleReport(id string)
}

// Handler handles report HTTP requests
type Handler struct {
	repo      *reports.Repository
	runner    *reports.Runner
	scheduler Scheduler
	events    *events.Manager
	log       zerolog.Logger
}

// NewHandler creates a new reports handler. scheduler may be nil when
// scheduling is disabled.
func NewHandler(repo *reports.Repository, runner *reports.Runner, scheduler Scheduler, log zerolog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		runner:    runner,
		scheduler: scheduler,
		log:       log.With().Str("handler", "reports").Logger(),
	}
}

// SetEventManager makes the handler emit ReportCreated and ReportDeleted events
func (h *Handler) SetEventManager(m *events.Manager) {
	h.events = m
}

// CreateRequest describes a new report definition
type CreateRequest struct {
	Name         string         `json:"name" validate:"required"`
	Source       dataset.Source `json:"source"`
	Recode       []recode.Step  `json:"recode,omitempty"`
	GroupColumn  string         `json:"group_column" validate:"required"`
	IncomeColumn string         `json:"income_column" validate:"required"`
	Kind         string         `json:"kind" validate:"required"`
	Mode         string         `json:"mode,omitempty"`
	Base         float64        `json:"base,omitempty"`
	Schedule     string         `json:"schedule,omitempty"`
}

// HandleCreate handles POST /api/reports
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	kind, err := inequality.ParseKind(req.Kind)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}
	mode, err := inequality.ParseMode(req.Mode)
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	def := &reports.Definition{
		Name:         req.Name,
		Source:       req.Source,
		Recode:       req.Recode,
		GroupColumn:  req.GroupColumn,
		IncomeColumn: req.IncomeColumn,
		Kind:         kind,
		Params:       inequality.Params{Mode: mode, Base: req.Base},
		Schedule:     req.Schedule,
	}
	if err := h.repo.Create(r.Context(), def); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	if h.scheduler != nil && def.Schedule != "" {
		if err := h.scheduler.ScheduleReport(*def); err != nil {
			h.log.Error().Err(err).Str("id", def.ID).Msg("Failed to schedule report")
		}
	}
	if h.events != nil {
		h.events.EmitTyped("reports", &events.ReportCreatedData{
			ReportID: def.ID,
			Name:     def.Name,
			Schedule: def.Schedule,
		})
	}

	httpapi.WriteJSON(w, h.log, http.StatusCreated, def)
}

// HandleList handles GET /api/reports
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	defs, err := h.repo.List(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"reports": defs,
		"count":   len(defs),
	})
}

// HandleGet handles GET /api/reports/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	def, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, def)
}

// HandleDelete handles DELETE /api/reports/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	if h.scheduler != nil {
		h.scheduler.UnscheduleReport(id)
	}
	if h.events != nil {
		h.events.EmitTyped("reports", &events.ReportDeletedData{ReportID: id})
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRun handles POST /api/reports/{id}/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	res, err := h.runner.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, res)
}

// HandleResult handles GET /api/reports/{id}/result
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.LatestResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, res)
}
