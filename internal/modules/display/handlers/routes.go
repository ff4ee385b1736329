package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all display routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bar", func(r chi.Router) {
		r.Get("/", h.HandleGetBar)
		r.Get("/{job}", h.HandleGetItem)
		r.Get("/{job}/open", h.HandleOpen)
	})
	r.Get("/notifications", h.HandleGetNotifications)
	r.Get("/stream", h.HandleStream)
}
