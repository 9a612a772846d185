package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/kafkanator/internal/httpapi"
	"github.com/aristath/kafkanator/internal/reliability"
)

// BackupHandlers triggers and lists database backups
type BackupHandlers struct {
	service *reliability.BackupService
	log     zerolog.Logger
}

// NewBackupHandlers creates backup handlers. service is nil when backups
// are not configured.
func NewBackupHandlers(service *reliability.BackupService, log zerolog.Logger) *BackupHandlers {
	return &BackupHandlers{
		service: service,
		log:     log.With().Str("handler", "backups").Logger(),
	}
}

func (h *BackupHandlers) unavailable(w http.ResponseWriter) bool {
	if h.service != nil {
		return false
	}
	httpapi.WriteJSON(w, h.log, http.StatusServiceUnavailable, map[string]string{
		"status":  "error",
		"message": "Backups are not configured",
	})
	return true
}

// HandleCreateBackup uploads a backup immediately
// POST /api/system/backups
func (h *BackupHandlers) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	h.log.Info().Msg("Manual backup triggered")
	info, err := h.service.CreateAndUploadBackup(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusCreated, info)
}

// HandleListBackups lists stored backups, newest first
// GET /api/system/backups
func (h *BackupHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		httpapi.WriteError(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}
