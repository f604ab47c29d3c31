package tasks

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves task endpoints.
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

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	q := r.URL.Query()
	filter := ListFilter{Status: Status(strings.TrimSpace(q.Get("status"))), Priority: Priority(strings.TrimSpace(q.Get("priority")))}
	if raw := strings.TrimSpace(q.Get("assignedToId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.errors.Error(w, r, shared.Invalid("assignedToId must be a positive integer"))
			return
		}
		filter.AssigneeID = &id
	}
	page, perPage := shared.PageParams(q, 500)
	filter.Limit, filter.Offset = perPage, (page-1)*perPage

	items, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	var req CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("task created", slog.Int64("task_id", t.ID), slog.Int64("assigned_to", t.AssignedToID))
	httpx.Created(w, t, "Task created successfully")
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.service.UpdateStatus(r.Context(), p, id, Status(req.Status))
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: t, Message: "Task status updated"})
}

func (h *Handler) updateProgress(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req ProgressRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.service.UpdateProgress(r.Context(), p, id, *req.CompletionLevel, req.Notes)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: t, Message: "Task progress updated"})
}

func (h *Handler) reassign(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req ReassignRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.service.Reassign(r.Context(), p, id, req.AssignedToID, req.Notes)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: t, Message: "Task reassigned"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), p, id); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Task deleted successfully")
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		h.errors.Error(w, r, err)
		return false
	}
	if err := httpx.Validate(h.validator, dst); err != nil {
		h.errors.Error(w, r, err)
		return false
	}
	return true
}
