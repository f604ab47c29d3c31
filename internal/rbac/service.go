package rbac

import (
	"fmt"
	"sort"
	"strings"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Permit reports whether role may perform action. Unknown roles were already
// folded into Staff by roles.Parse.
func (p Policy) Permit(role roles.Role, action Action) bool {
	grants, ok := p.grants[roles.Parse(string(role))]
	if !ok {
		return false
	}
	_, ok = grants[strings.ToLower(strings.TrimSpace(action))]
	return ok
}

// Authorize is Permit expressed as an error.
func (p Policy) Authorize(principal shared.Principal, action Action) error {
	if principal.UserID == 0 {
		return shared.ErrUnauthenticated
	}
	if !p.Permit(principal.Role, action) {
		return fmt.Errorf("%w: %s", shared.ErrForbidden, action)
	}
	return nil
}

// EffectivePermissions lists the actions granted to role, sorted.
func (p Policy) EffectivePermissions(role roles.Role) []string {
	grants := p.grants[roles.Parse(string(role))]
	out := make([]string, 0, len(grants))
	for a := range grants {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
