package server

import (
	"net/http"

	"github.com/aristath/kafkanator/internal/httpapi"
	"github.com/aristath/kafkanator/internal/version"
)

// handleHealth reports whether the service and its database are usable
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": version.Version,
		"service": "kafkanator",
	}

	status := http.StatusOK
	if err := s.container.ReportsDB.QuickCheck(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Health check failed")
		response["status"] = "unhealthy"
		response["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	httpapi.WriteJSON(w, s.log, status, response)
}
