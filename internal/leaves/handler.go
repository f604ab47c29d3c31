package leaves

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves leave endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	errors    httpx.Responder
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, responder httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, errors: responder, validator: httpx.NewValidator()}
}

// MountRoutes registers leave routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermLeavesRequest, shared.PermLeavesApprove))
		r.Get("/leaves", h.list)
		r.Post("/leaves", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermLeavesApprove))
		r.Put("/leaves/{id}/status", h.review)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	var status shared.ApprovalStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := shared.ParseApprovalStatus(raw)
		if err != nil {
			h.errors.Error(w, r, err)
			return
		}
		status = parsed
	}
	items, err := h.service.List(r.Context(), p, status)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	var req CreateLeaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	leave, err := h.service.Request(r.Context(), p, req, strings.TrimSpace(r.Header.Get(shared.IdempotencyHeader)))
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("leave requested", slog.Int64("leave_id", leave.ID), slog.Int64("user_id", p.UserID), slog.Int("days", leave.Days))
	httpx.Created(w, leave, "Leave requested successfully")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	status, err := shared.ParseApprovalStatus(req.Status)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	leave, err := h.service.Review(r.Context(), p, id, status, req.Note)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: leave, Message: Message(status)})
}
