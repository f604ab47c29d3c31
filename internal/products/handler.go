package products

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves the product catalogue.
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

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermProductsView))
		r.Get("/products", h.list)
		r.Get("/products/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermProductsWrite))
		r.Post("/products", h.create)
		r.Put("/products/{id}", h.update)
		r.Delete("/products/{id}", h.delete)
	})
}

// canManage reports whether the caller sees inactive products too.
func (h *Handler) canManage(r *http.Request) bool {
	p, ok := shared.PrincipalFromContext(r.Context())
	return ok && h.rbac.Policy.Authorize(p, shared.PermProductsWrite) == nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Category:   Category(strings.TrimSpace(r.URL.Query().Get("category"))),
		ActiveOnly: !h.canManage(r) || r.URL.Query().Get("active") == "true",
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if !p.IsActive && !h.canManage(r) {
		h.errors.Error(w, r, shared.ErrNotFound)
		return
	}
	httpx.OK(w, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	p, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.Created(w, p, "Product created successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: p, Message: "Product updated successfully"})
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
	httpx.Message(w, http.StatusOK, "Product deleted successfully")
}
