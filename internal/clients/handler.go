package clients

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves client endpoints.
type Handler struct {
	service   *Service
	rbac      rbac.Middleware
	errors    httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(service *Service, rbac rbac.Middleware, responder httpx.Responder) *Handler {
	return &Handler{service: service, rbac: rbac, errors: responder, validator: httpx.NewValidator()}
}

// MountRoutes registers client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermClientsView))
		r.Get("/clients", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermClientsWrite))
		r.Post("/clients", h.create)
		r.Put("/clients/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermClientsDelete))
		r.Delete("/clients/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.service.List(r.Context(), ListFilter{Status: Status(strings.TrimSpace(q.Get("status"))), Search: q.Get("search")})
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.Created(w, c, "Client added successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	var req UpdateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: c, Message: "Client updated successfully"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Client deleted successfully")
}
