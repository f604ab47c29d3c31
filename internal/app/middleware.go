package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/officehub/officehub/internal/auth"
	"github.com/officehub/officehub/internal/observability"
	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics
}

type responseWriterWithCommit struct {
	http.ResponseWriter
	sess          *shared.Session
	manager       *shared.SessionManager
	ctx           context.Context
	req           *http.Request
	logger        *slog.Logger
	headerWritten bool
}

func (w *responseWriterWithCommit) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		if err := w.manager.Commit(w.ctx, w.ResponseWriter, w.req, w.sess); err != nil {
			w.logger.Error("commit session", slog.Any("error", err))
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWithCommit) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// SessionMiddleware loads the session, exposes its principal on the context
// and commits it right before the first byte of the response.
func SessionMiddleware(manager *shared.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := manager.Load(ctx, r)
			if err != nil {
				logger.Error("failed to load session", slog.Any("error", err))
				httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			ctx = shared.ContextWithSession(ctx, sess)
			if p, ok := sess.Principal(); ok {
				ctx = shared.ContextWithPrincipal(ctx, p)
			}

			wrapped := &responseWriterWithCommit{
				ResponseWriter: w,
				sess:           sess,
				manager:        manager,
				ctx:            ctx,
				req:            r.WithContext(ctx),
				logger:         logger,
			}
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			if !wrapped.headerWritten {
				wrapped.WriteHeader(http.StatusOK)
			}
		})
	}
}

// StoreGuard answers 503 for API routes that need the database when the
// startup probe found it unreachable. Paths in allow keep working offline;
// they match exactly, ignoring one trailing slash.
func StoreGuard(health db.Health, allow ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allow))
	for _, p := range allow {
		allowed[strings.TrimSuffix(p, "/")] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		if health.Reachable() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[strings.TrimSuffix(r.URL.Path, "/")]; ok {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, r, shared.ErrStoreUnavailable)
		})
	}
}

// AccountCheck re-reads the signed-in account on every request. A deleted or
// deactivated account loses its session, and a changed role applies at once.
// Offline principals and an unreachable store skip the lookup.
func AccountCheck(accounts auth.AccountStore, health db.Health, manager *shared.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if accounts == nil || !health.Reachable() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := shared.PrincipalFromContext(ctx)
			if !ok || p.UserID <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			sess := shared.SessionFromContext(ctx)
			u, err := accounts.FindByID(ctx, p.UserID)
			switch {
			case errors.Is(err, shared.ErrNotFound) || (err == nil && !u.IsActive):
				logger.Info("session revoked", slog.Int64("user_id", p.UserID), slog.Bool("deleted", err != nil))
				manager.Destroy(sess)
				ctx = shared.ContextWithPrincipal(ctx, shared.Principal{})
			case err != nil:
				httpx.RespondError(w, r, fmt.Errorf("app: account check: %w", err))
				return
			case u.Role != p.Role:
				logger.Info("session role updated", slog.Int64("user_id", p.UserID), slog.String("from", p.Role.String()), slog.String("to", u.Role.String()))
				p.Role = u.Role
				if sess != nil {
					sess.SetPrincipal(p)
				}
				ctx = shared.ContextWithPrincipal(ctx, p)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MiddlewareStack installs the OfficeHub middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'",
		SSLRedirect:           cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !cfg.Config.IsProduction(),
	})

	timeout := 30 * time.Second
	limit := 120
	if cfg.Config != nil {
		if cfg.Config.AppRequestTimeout > 0 {
			timeout = cfg.Config.AppRequestTimeout
		}
		if cfg.Config.RateLimitPerMinute > 0 {
			limit = cfg.Config.RateLimitPerMinute
		}
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					httpx.Fail(w, http.StatusBadRequest, "Request blocked")
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(limit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.Fail(w, http.StatusTooManyRequests, "Too many requests")
			}),
		),
	}
	if cfg.SessionManager != nil {
		middlewares = append(middlewares, SessionMiddleware(cfg.SessionManager, cfg.Logger))
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	return middlewares
}
