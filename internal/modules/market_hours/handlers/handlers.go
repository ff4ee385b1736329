// Package handlers provides HTTP handlers for market hours operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/modules/market_hours"
)

// StatusProvider reports the gate's current view of the market.
type StatusProvider interface {
	MarketStatus(now time.Time) market_hours.MarketStatus
	// Holidays returns the cached holiday dates of year without fetching.
	Holidays(year int) []string
}

// Handler handles market hours HTTP requests
type Handler struct {
	provider StatusProvider
	now      func() time.Time
	log      zerolog.Logger
}

// NewHandler creates a new market hours handler
func NewHandler(provider StatusProvider, log zerolog.Logger) *Handler {
	return &Handler{
		provider: provider,
		now:      time.Now,
		log:      log.With().Str("handler", "market_hours").Logger(),
	}
}

// HandleGetStatus handles GET /api/market-hours/status
// Returns whether quote polling is currently live and, if not, why
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.provider.MarketStatus(h.now())

	response := map[string]interface{}{
		"data": status,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetHolidays handles GET /api/market-hours/holidays[/{year}]
// The year defaults to the current one in the server's zone
func (h *Handler) HandleGetHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if raw := chi.URLParam(r, "year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1970 || parsed > 9999 {
			h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid year"})
			return
		}
		year = parsed
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"year":     year,
			"holidays": h.provider.Holidays(year),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
