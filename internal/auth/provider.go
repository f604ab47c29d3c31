package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Provider names used in logs and results.
const (
	StoreProviderName  = "store"
	StaticProviderName = "fallback"
)

// CredentialProvider verifies an identifier/credential pair. Implementations
// return ErrUnknownIdentity when they have no such identifier,
// shared.ErrInvalidCredentials on mismatch and shared.ErrStoreUnavailable when
// their backend cannot be reached.
type CredentialProvider interface {
	Name() string
	NeedsStore() bool
	Verify(ctx context.Context, identifier, credential string) (Identity, error)
}

// UserStore is the persistence the store provider needs.
type UserStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}

// StoreProvider checks credentials against the users table.
type StoreProvider struct {
	store  UserStore
	cost   int
	logger *slog.Logger
}

// NewStoreProvider constructs the primary provider.
func NewStoreProvider(store UserStore, logger *slog.Logger) *StoreProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreProvider{store: store, cost: bcrypt.DefaultCost, logger: logger}
}

// Name implements CredentialProvider.
func (p *StoreProvider) Name() string { return StoreProviderName }

// NeedsStore implements CredentialProvider.
func (p *StoreProvider) NeedsStore() bool { return true }

// Verify implements CredentialProvider. Rows still holding a cleartext
// credential are compared in constant time and re-hashed on success.
func (p *StoreProvider) Verify(ctx context.Context, identifier, credential string) (Identity, error) {
	user, err := p.store.FindByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return Identity{}, ErrUnknownIdentity
	case errors.Is(err, shared.ErrStoreUnavailable):
		return Identity{}, err
	case err != nil:
		return Identity{}, fmt.Errorf("auth: find user: %w", err)
	}
	if !user.IsActive {
		return Identity{}, shared.ErrInvalidCredentials
	}

	if IsHashed(user.PasswordHash) {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
			return Identity{}, shared.ErrInvalidCredentials
		}
	} else {
		if !constantTimeEqual(user.PasswordHash, credential) {
			return Identity{}, shared.ErrInvalidCredentials
		}
		p.upgrade(ctx, user.ID, credential)
	}

	return Identity{ID: user.ID, Name: user.DisplayName(), Email: user.Email, Role: user.Role}, nil
}

func (p *StoreProvider) upgrade(ctx context.Context, userID int64, credential string) {
	hash, err := HashPassword(credential, p.cost)
	if err != nil {
		p.logger.Warn("hash legacy credential", slog.Int64("user_id", userID), slog.Any("error", err))
		return
	}
	if err := p.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		p.logger.Warn("upgrade legacy credential", slog.Int64("user_id", userID), slog.Any("error", err))
		return
	}
	p.logger.Info("legacy credential upgraded", slog.Int64("user_id", userID))
}

// StaticCredential is one row of the fallback table.
type StaticCredential struct {
	Identifier string
	Credential string
	Identity   Identity
}

// StaticProvider serves a fixed in-memory table.
type StaticProvider struct {
	entries []StaticCredential
}

// NewStaticProvider builds a provider over entries.
func NewStaticProvider(entries ...StaticCredential) *StaticProvider {
	return &StaticProvider{entries: entries}
}

// BootstrapCredentials are the two accounts that work while the store is down.
// Their ids are negative so they can never collide with a stored row.
func BootstrapCredentials() []StaticCredential {
	return []StaticCredential{
		{Identifier: "admin", Credential: "admin123", Identity: Identity{ID: -1, Name: "Admin User", Email: "admin", Role: roles.Admin}},
		{Identifier: "user", Credential: "user123", Identity: Identity{ID: -2, Name: "Staff User", Email: "user", Role: roles.Staff}},
	}
}

// Name implements CredentialProvider.
func (p *StaticProvider) Name() string { return StaticProviderName }

// NeedsStore implements CredentialProvider.
func (p *StaticProvider) NeedsStore() bool { return false }

// Verify implements CredentialProvider with exact matching only.
func (p *StaticProvider) Verify(_ context.Context, identifier, credential string) (Identity, error) {
	for _, entry := range p.entries {
		if entry.Identifier != identifier {
			continue
		}
		if constantTimeEqual(entry.Credential, credential) {
			return entry.Identity, nil
		}
		return Identity{}, shared.ErrInvalidCredentials
	}
	return Identity{}, ErrUnknownIdentity
}

// HashPassword bcrypt-hashes a password.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IsHashed reports whether stored looks like a bcrypt hash.
func IsHashed(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
