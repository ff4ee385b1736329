package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the gate status and the cached holiday calendar
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market-hours", func(r chi.Router) {
		r.Get("/status", h.HandleGetStatus)
		r.Get("/holidays", h.HandleGetHolidays)
		r.Get("/holidays/{year}", h.HandleGetHolidays)
	})
}
