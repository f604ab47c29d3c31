package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validator      *validator.Validate
	errors         httpx.Responder
	observer       LoginObserver
}

// LoginObserver is told about every login attempt.
type LoginObserver interface {
	ObserveLogin(provider string, ok bool)
}

type nopObserver struct{}

func (nopObserver) ObserveLogin(string, bool) {}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, responder httpx.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      validator.New(),
		errors:         responder,
		observer:       nopObserver{},
	}
}

// WithObserver installs a login observer such as the metrics collector.
func (h *Handler) WithObserver(o LoginObserver) *Handler {
	if o != nil {
		h.observer = o
	}
	return h
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

// loginRequest accepts both the SPA's field names and the generic ones.
type loginRequest struct {
	Username   string `json:"username"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Credential string `json:"credential"`
}

type loginForm struct {
	Identifier string `validate:"required,max=255"`
	Credential string `validate:"required,max=255"`
}

type loginResponse struct {
	Success bool     `json:"success"`
	Role    string   `json:"role"`
	User    Identity `json:"user"`
	Message string   `json:"message"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.errors.Error(w, r, err)
		return
	}
	form := loginForm{Identifier: firstNonEmpty(req.Identifier, req.Username), Credential: firstNonEmpty(req.Credential, req.Password)}
	if err := h.validator.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.service.Authenticate(r.Context(), form.Identifier, form.Credential)
	if err != nil {
		h.observer.ObserveLogin("", false)
		httpx.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	h.observer.ObserveLogin(result.Provider, true)

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
		h.logger.Warn("renew session", slog.Any("error", err))
	}
	identity := result.Identity
	sess.SetPrincipal(shared.Principal{UserID: identity.ID, Role: identity.Role, Name: identity.Name, Email: identity.Email})
	if err := h.service.RegisterSession(r.Context(), sess.ID, identity, time.Now().Add(h.sessionManager.TTL()), r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	w.Header().Set(shared.SessionHeader, sess.ID)

	message := "Login successful"
	if result.Offline() {
		message = "Login successful (Offline Mode)"
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		Success: true,
		Role:    identity.Role.String(),
		User:    identity,
		Message: message,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && !sess.IsNew() {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.Message(w, http.StatusOK, "Logged out")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.Error(w, r, shared.ErrUnauthenticated)
		return
	}
	httpx.OK(w, principal)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HandleLoginForTest exposes the login handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}

// HandleMeForTest exposes the me handler for tests.
func (h *Handler) HandleMeForTest(w http.ResponseWriter, r *http.Request) {
	h.handleMe(w, r)
}
