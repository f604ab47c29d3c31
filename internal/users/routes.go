package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/officehub/officehub/internal/shared"
)

// MountRoutes registers staff routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermStaffView))
		r.Get("/staff", h.list)
		r.Get("/staff/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermStaffWrite))
		r.Post("/staff", h.create)
		r.Put("/staff/{id}", h.update)
		r.Patch("/staff/{id}/active", h.setActive)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermStaffDelete))
		r.Delete("/staff/{id}", h.delete)
	})
}
