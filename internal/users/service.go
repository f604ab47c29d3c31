package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/officehub/officehub/internal/auth"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Invalidator drops cached dashboard figures after staff changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service orchestrates staff management.
type Service struct {
	repo        Repository
	audit       shared.AuditRecorder
	invalidator Invalidator
	logger      *slog.Logger
	hashCost    int
}

// NewService constructs the service. audit and invalidator may be nil.
func NewService(repo Repository, audit shared.AuditRecorder, invalidator Invalidator, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, invalidator: invalidator, logger: logger, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, used by tests to keep hashing fast.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// List returns staff accounts.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new account with a bcrypt hashed password. Only admins
// can grant the admin role.
func (s *Service) Create(ctx context.Context, actor shared.Principal, req CreateUserRequest) (*User, error) {
	role := roles.Staff
	if req.Role != "" {
		role = roles.Parse(req.Role)
	}
	if role == roles.Admin && actor.Role != roles.Admin {
		return nil, fmt.Errorf("%w: only an admin can grant the admin role", shared.ErrForbidden)
	}
	hash, err := auth.HashPassword(req.Password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	user, err := s.repo.Create(ctx, NewUser{
		Email:        normalizeEmail(req.Email),
		Username:     req.Username,
		EmployeeID:   req.EmployeeID,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Department:   req.Department,
		Title:        req.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}
	s.invalidate(ctx)
	return user, nil
}

// Update changes profile fields. Missing fields keep their value.
func (s *Service) Update(ctx context.Context, actor shared.Principal, id int64, req UpdateUserRequest) (*User, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	// a non-admin editing an admin could reset its credentials and sign in as it
	if existing.Protected() && actor.Role != roles.Admin {
		return nil, fmt.Errorf("%w: only an admin can edit this account", shared.ErrProtectedAccount)
	}

	updates := make(map[string]any)
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}
	if req.Username != nil {
		updates["username"] = text(req.Username)
	}
	if req.EmployeeID != nil {
		updates["employee_id"] = text(req.EmployeeID)
	}
	if req.Department != nil {
		updates["department"] = text(req.Department)
	}
	if req.Title != nil {
		updates["title"] = text(req.Title)
	}
	if req.ProfileImageURL != nil {
		updates["profile_image_url"] = text(req.ProfileImageURL)
	}
	if req.Role != nil {
		role := roles.Parse(*req.Role)
		if role != existing.Role && (role == roles.Admin || existing.Role == roles.Admin) && actor.Role != roles.Admin {
			return nil, fmt.Errorf("%w: only an admin can change admin roles", shared.ErrForbidden)
		}
		updates["role"] = role.String()
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("users: hash password: %w", err)
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return existing, nil
	}

	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("users: update: %w", err)
	}
	if _, ok := updates["role"]; ok {
		s.invalidate(ctx)
	}
	return user, nil
}

// SetActive activates or deactivates an account. Callers cannot deactivate
// themselves, and protected accounts cannot be deactivated at all.
func (s *Service) SetActive(ctx context.Context, actor shared.Principal, id int64, active bool) (*User, error) {
	if !active && actor.Owns(id) {
		return nil, shared.Invalid("you cannot deactivate your own account")
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("users: get: %w", err)
	}
	if !active && existing.Protected() {
		return nil, shared.ErrProtectedAccount
	}
	user, err := s.repo.Update(ctx, id, map[string]any{"is_active": active})
	if err != nil {
		return nil, fmt.Errorf("users: set active: %w", err)
	}
	s.invalidate(ctx)
	return user, nil
}

// Delete hard-deletes an account. Admins and the bootstrap account are protected.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("users: get: %w", err)
	}
	if existing.Protected() || actor.Owns(id) {
		return shared.ErrProtectedAccount
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   "staff.delete",
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"email": existing.Email, "role": existing.Role.String()},
	}); err != nil {
		s.logger.Warn("audit staff delete", slog.Int64("user_id", id), slog.Any("error", err))
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
