package users

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves the staff directory.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	errors    httpx.Responder
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, responder httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, errors: responder, validator: httpx.NewValidator()}
}

type listResponse struct {
	Success    bool              `json:"success"`
	Data       []User            `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := shared.PageParams(q, 200)
	filter := ListFilter{Search: q.Get("search"), Limit: perPage, Offset: (page - 1) * perPage}
	if raw := strings.TrimSpace(q.Get("role")); raw != "" {
		if !roles.Valid(raw) {
			h.errors.Error(w, r, shared.Invalid("role must be one of admin, proprietor, staff"))
			return
		}
		role := roles.Parse(raw)
		filter.Role = &role
	}
	if raw := strings.TrimSpace(q.Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.errors.Error(w, r, shared.Invalid("active must be true or false"))
			return
		}
		filter.IsActive = &active
	}

	staff, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Success: true, Data: staff, Pagination: shared.NewPagination(page, perPage, total)})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, user)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	user, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("staff created", slog.Int64("user_id", user.ID), slog.Int64("actor_id", actor.UserID))
	httpx.Created(w, user, "Staff member added successfully")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	user, err := h.service.Update(r.Context(), actor, id, req)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: user, Message: "Staff member updated successfully"})
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	var req SetActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	user, err := h.service.SetActive(r.Context(), actor, id, *req.IsActive)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	msg := "Staff member deactivated"
	if user.IsActive {
		msg = "Staff member activated"
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: user, Message: msg})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("staff deleted", slog.Int64("user_id", id), slog.Int64("actor_id", actor.UserID))
	httpx.Message(w, http.StatusOK, "Staff member deleted successfully")
}
