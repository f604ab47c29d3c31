package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
	errors  httpx.Responder
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, responder httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, errors: responder}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermDashboardView))
		r.Get("/dashboard/summary", h.handleSummary)
		r.Get("/dashboard/stats", h.handleStats)
	})
}

type summaryView struct {
	TasksInWindow     int64             `json:"tasksInWindow"`
	ActiveStaffCount  *int64            `json:"activeStaffCount,omitempty"`
	PendingByPriority PendingByPriority `json:"pendingByPriority"`
	WindowDays        int               `json:"windowDays"`
}

// statsView is the older dashboard payload still read by the SPA.
type statsView struct {
	TasksLast7Days int64             `json:"tasksLast7Days"`
	TotalStaff     *int64            `json:"totalStaff,omitempty"`
	PendingTasks   PendingByPriority `json:"pendingTasks"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, elevated, err := h.queryFromRequest(r)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	view := summaryView{
		TasksInWindow:     sum.TasksInWindow,
		PendingByPriority: sum.PendingByPriority,
		WindowDays:        sum.WindowDays,
	}
	if elevated {
		view.ActiveStaffCount = &sum.ActiveStaffCount
	}
	httpx.OK(w, view)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	q, elevated, err := h.queryFromRequest(r)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	view := statsView{TasksLast7Days: sum.TasksInWindow, PendingTasks: sum.PendingByPriority}
	if elevated {
		view.TotalStaff = &sum.ActiveStaffCount
	}
	httpx.OK(w, view)
}

// queryFromRequest derives the query from the session principal. The role
// parameter can narrow the caller's role but never widen it, and non-elevated
// callers are always scoped to themselves.
func (h *Handler) queryFromRequest(r *http.Request) (Query, bool, error) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		return Query{}, false, shared.ErrUnauthenticated
	}
	values := r.URL.Query()

	role := principal.Role
	if raw := strings.TrimSpace(values.Get("role")); raw != "" {
		role = roles.Narrow(principal.Role, roles.Parse(raw))
	}

	q := Query{Role: role}
	if raw := strings.TrimSpace(values.Get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, false, shared.Invalid("days must be an integer")
		}
		q.WindowDays = &days
	}

	if !role.IsElevated() {
		subject := principal.UserID
		if principal.Elevated() {
			if raw := strings.TrimSpace(values.Get("userId")); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					return Query{}, false, shared.Invalid("userId must be a positive integer")
				}
				subject = id
			}
		}
		q.SubjectID = &subject
	}
	return q, role.IsElevated(), nil
}
