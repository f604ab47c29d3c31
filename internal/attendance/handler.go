package attendance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves attendance endpoints.
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

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermAttendanceSelf))
		r.Post("/attendance/check-in", h.checkIn)
		r.Post("/attendance/check-out", h.checkOut)
		r.Get("/attendance/today", h.today)
		r.Get("/attendance/history", h.history)
	})
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	var req CheckInRequest
	// The body is optional.
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	rec, err := h.service.CheckIn(r.Context(), p, req.Notes)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("checked in", slog.Int64("user_id", p.UserID))
	httpx.Created(w, rec, "Checked in successfully")
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	rec, err := h.service.CheckOut(r.Context(), p)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("checked out", slog.Int64("user_id", p.UserID))
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: rec, Message: "Checked out successfully"})
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	rec, err := h.service.Today(r.Context(), p)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	// Data is null when there is no record yet.
	httpx.JSON(w, http.StatusOK, struct {
		Success bool    `json:"success"`
		Data    *Record `json:"data"`
	}{Success: true, Data: rec})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	var userID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.errors.Error(w, r, shared.Invalid("userId must be a positive integer"))
			return
		}
		userID = id
	}
	items, err := h.service.History(r.Context(), p, userID)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}
