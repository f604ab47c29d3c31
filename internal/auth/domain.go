package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/officehub/officehub/internal/roles"
)

// ErrUnknownIdentity means a provider has no record of the identifier. The
// gate treats it as "try the next provider", never as a client-facing error.
var ErrUnknownIdentity = errors.New("auth: unknown identity")

// User is the credential view of an account row.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         roles.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName joins first and last name.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity is the minimal projection returned on successful authentication.
type Identity struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  roles.Role `json:"-"`
}

// Result is an authenticated identity plus the provider that vouched for it.
type Result struct {
	Identity Identity
	Provider string
}

// Offline reports whether the fallback table produced the result.
func (r Result) Offline() bool {
	return r.Provider == StaticProviderName
}
