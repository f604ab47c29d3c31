// Package rbac maps roles to the actions they may perform.
package rbac

import (
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Action names something a principal may attempt. Values are the shared.Perm* constants.
type Action = string

// Policy is a closed role to action table. The zero value denies everything.
type Policy struct {
	grants map[roles.Role]map[Action]struct{}
}

// DefaultPolicy grants elevated roles every action and staff the StaffScopes subset.
func DefaultPolicy() Policy {
	full := toSet(shared.OfficeScopes())
	return Policy{grants: map[roles.Role]map[Action]struct{}{
		roles.Admin:      full,
		roles.Proprietor: full,
		roles.Staff:      toSet(shared.StaffScopes()),
	}}
}

func toSet(actions []string) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}
