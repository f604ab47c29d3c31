package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/shared"
)

// PermissionsHandler tells the client which actions its principal holds.
type PermissionsHandler struct {
	policy Policy
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(policy Policy, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{policy: policy, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAuth).Get("/permissions", h.listPermissions)
}

type permissionsResponse struct {
	Role        string   `json:"role"`
	Elevated    bool     `json:"elevated"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	httpx.OK(w, permissionsResponse{
		Role:        principal.Role.String(),
		Elevated:    principal.Elevated(),
		Permissions: h.policy.EffectivePermissions(principal.Role),
	})
}
