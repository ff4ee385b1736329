package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/work"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "kanbanbar",
	}

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			response["status"] = "degraded"
			response["database"] = err.Error()
			s.writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleListJobs handles GET /api/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope(s.scheduler.Statuses()))
}

// handleRestartJob handles POST /api/jobs/{job}/restart
// Cancels the pending timer and runs an initial cycle immediately
func (s *Server) handleRestartJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")

	err := s.scheduler.Restart(name)
	var cfgErr *domain.ConfigError
	switch {
	case errors.Is(err, work.ErrUnknownJob):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	case errors.As(err, &cfgErr):
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	status, _ := s.scheduler.Status(name)
	s.writeJSON(w, http.StatusAccepted, envelope(status))
}

// handleReloadConfig handles POST /api/config/reload
// Re-reads the settings file; jobs watching a changed section restart
func (s *Server) handleReloadConfig(w http.ResponseWriter, r *http.Request) {
	changed, err := s.settings.Reload()
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if changed == nil {
		changed = []string{}
	}
	s.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{"changed_sections": changed}))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
