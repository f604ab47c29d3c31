package expenses

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves expense endpoints.
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

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermExpensesSubmit, shared.PermExpensesApprove))
		r.Get("/expenses", h.list)
		r.Post("/expenses", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermExpensesApprove))
		r.Put("/expenses/{id}/status", h.review)
		r.Get("/expenses/export", h.export)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	filter, err := filterFromQuery(r)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	items, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.OK(w, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	e, err := h.service.Submit(r.Context(), p, req, strings.TrimSpace(r.Header.Get(shared.IdempotencyHeader)))
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	h.logger.Info("expense submitted", slog.Int64("expense_id", e.ID), slog.Int64("user_id", p.UserID))
	httpx.Created(w, e, "Expense submitted successfully")
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
	e, err := h.service.Review(r.Context(), p, id, status, req.Note)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: true, Data: e, Message: Message(status)})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	filter, err := filterFromQuery(r)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	items, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		h.errors.Error(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, items); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	name := fmt.Sprintf("expenses-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func filterFromQuery(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	var filter ListFilter
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := shared.ParseApprovalStatus(raw)
		if err != nil {
			return ListFilter{}, err
		}
		filter.Status = status
	}
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			continue
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return ListFilter{}, shared.Invalid("%s must be formatted as YYYY-MM-DD", bound.name)
		}
		*bound.dst = &t
	}
	return filter, nil
}
