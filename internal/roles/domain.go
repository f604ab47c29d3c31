// Package roles defines the closed set of account roles.
package roles

import "strings"

// Role classifies an account for authorization.
type Role string

const (
	Admin      Role = "admin"
	Proprietor Role = "proprietor"
	Staff      Role = "staff"
)

// All lists every role, most privileged first.
func All() []Role {
	return []Role{Admin, Proprietor, Staff}
}

// Parse maps a role string case-insensitively. Anything unrecognised is Staff.
func Parse(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case Admin:
		return Admin
	case Proprietor:
		return Proprietor
	default:
		return Staff
	}
}

// Valid reports whether raw names a known role exactly (ignoring case).
func Valid(raw string) bool {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case Admin, Proprietor, Staff:
		return true
	}
	return false
}

// IsElevated is the single admin-equivalence predicate.
func (r Role) IsElevated() bool {
	return r == Admin || r == Proprietor
}

// IsElevated parses raw and reports admin equivalence.
func IsElevated(raw string) bool {
	return Parse(raw).IsElevated()
}

// Narrow returns the less privileged of a and b.
func Narrow(a, b Role) Role {
	if !a.IsElevated() || !b.IsElevated() {
		return Staff
	}
	if a == Proprietor || b == Proprietor {
		return Proprietor
	}
	return Admin
}

func (r Role) String() string { return string(r) }
