package shared

import "github.com/officehub/officehub/internal/roles"

// Principal is the authenticated actor behind a request.
type Principal struct {
	UserID int64      `json:"id"`
	Role   roles.Role `json:"role"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
}

// Elevated reports admin equivalence.
func (p Principal) Elevated() bool {
	return p.Role.IsElevated()
}

// Owns reports whether the principal is userID.
func (p Principal) Owns(userID int64) bool {
	return p.UserID != 0 && p.UserID == userID
}

// Scope returns nil for elevated principals and the principal's own id
// otherwise, which list queries use as an owner filter.
func (p Principal) Scope() *int64 {
	if p.Elevated() {
		return nil
	}
	id := p.UserID
	return &id
}
