// Package handlers provides HTTP handlers for the bar display.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/modules/display"
)

// Handler handles display HTTP requests
type Handler struct {
	manager *display.StateManager
	log     zerolog.Logger
}

// NewHandler creates a new display handler
func NewHandler(manager *display.StateManager, log zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		log:     log.With().Str("handler", "display").Logger(),
	}
}

// HandleGetBar handles GET /api/bar
func (h *Handler) HandleGetBar(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, envelope(h.manager.Items()))
}

// HandleGetItem handles GET /api/bar/{job}
func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	job := chi.URLParam(r, "job")
	item, ok := h.manager.Item(job)
	if !ok {
		h.writeError(w, http.StatusNotFound, "no render for job "+job)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(item))
}

// HandleOpen handles GET /api/bar/{job}/open
// Redirects to the job's primary link
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	job := chi.URLParam(r, "job")
	item, ok := h.manager.Item(job)
	if !ok || item.Link == "" {
		h.writeError(w, http.StatusNotFound, "no link for job "+job)
		return
	}
	http.Redirect(w, r, item.Link, http.StatusFound)
}

// HandleGetNotifications handles GET /api/notifications
func (h *Handler) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, envelope(h.manager.Notifications()))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
