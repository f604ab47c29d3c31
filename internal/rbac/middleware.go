package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Policy Policy
	Logger *slog.Logger
}

// RequireAuth rejects requests without a session principal.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.PrincipalFromContext(r.Context()); !ok {
			httpx.RespondError(w, r, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, r, shared.ErrUnauthenticated)
				return
			}
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			for _, p := range normalized {
				if m.Policy.Permit(principal.Role, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			m.deny(w, r, principal, normalized)
		})
	}
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, r, shared.ErrUnauthenticated)
				return
			}
			for _, p := range normalized {
				if !m.Policy.Permit(principal.Role, p) {
					m.deny(w, r, principal, normalized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, principal shared.Principal, perms []string) {
	if m.Logger != nil {
		m.Logger.Info("rbac denied",
			slog.Int64("user_id", principal.UserID),
			slog.String("role", principal.Role.String()),
			slog.String("required", strings.Join(perms, ",")),
			slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, r, shared.ErrForbidden)
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, seen := unique[p]; seen {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
