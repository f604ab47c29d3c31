// Package users manages staff accounts.
package users

import (
	"strings"
	"time"

	"github.com/officehub/officehub/internal/roles"
)

// BootstrapEmail identifies the seeded administrator, which can never be deleted.
const BootstrapEmail = "admin"

// User is a staff account as exposed by the API. The password hash never
// leaves the repository.
type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	Username        *string    `json:"username,omitempty"`
	EmployeeID      *string    `json:"employeeId,omitempty"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ProfileImageURL *string    `json:"profileImageUrl,omitempty"`
	Role            roles.Role `json:"role"`
	Department      *string    `json:"department,omitempty"`
	Title           *string    `json:"title,omitempty"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Protected reports accounts that must survive deletion requests.
func (u User) Protected() bool {
	return u.Role == roles.Admin || strings.EqualFold(u.Email, BootstrapEmail)
}

// NewUser is the insert shape.
type NewUser struct {
	Email        string
	Username     *string
	EmployeeID   *string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         roles.Role
	Department   *string
	Title        *string
}

// ListFilter narrows staff listings.
type ListFilter struct {
	Role     *roles.Role
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}
