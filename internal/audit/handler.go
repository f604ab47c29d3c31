package audit

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

// Handler exposes the activity timeline.
type Handler struct {
	service *Service
	rbac    rbac.Middleware
	errors  httpx.Responder
}

// NewHandler constructs the handler.
func NewHandler(service *Service, rbac rbac.Middleware, responder httpx.Responder) *Handler {
	return &Handler{service: service, rbac: rbac, errors: responder}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermAuditView)).Get("/audit", h.timeline)
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, result)
}

func parseFilters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	f := TimelineFilters{
		Entity: strings.TrimSpace(q.Get("entity")),
		Action: strings.TrimSpace(q.Get("action")),
	}
	var err error
	if f.From, err = parseDate(q.Get("from"), "from"); err != nil {
		return f, err
	}
	if f.To, err = parseDate(q.Get("to"), "to"); err != nil {
		return f, err
	}
	if !f.To.IsZero() {
		// to is inclusive of the whole day
		f.To = f.To.AddDate(0, 0, 1)
	}
	if v := q.Get("actorId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, shared.Invalid("actorId must be an integer")
		}
		f.ActorID = &id
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	return f, nil
}

func parseDate(v, name string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, shared.Invalid("%s must be a date in YYYY-MM-DD format", name)
	}
	return t, nil
}
