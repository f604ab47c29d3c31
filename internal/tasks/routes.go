package tasks

import (
	"github.com/go-chi/chi/v5"

	"github.com/officehub/officehub/internal/shared"
)

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermTasksView))
		r.Get("/tasks", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermTasksWrite))
		r.Post("/tasks", h.create)
		r.Put("/tasks/{id}/status", h.updateStatus)
		r.Put("/tasks/{id}/progress", h.updateProgress)
		r.Put("/tasks/{id}/reassign", h.reassign)
		r.Delete("/tasks/{id}", h.delete)
	})
}
