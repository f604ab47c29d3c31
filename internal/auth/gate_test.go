package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

type memoryUsers struct {
	mu       sync.Mutex
	users    map[string]*User
	findErr  error
	upgraded map[int64]string
}

func newMemoryUsers(users ...*User) *memoryUsers {
	m := &memoryUsers{users: map[string]*User{}, upgraded: map[int64]string{}}
	for _, u := range users {
		m.users[u.Email] = u
	}
	return m
}

func (m *memoryUsers) FindByIdentifier(_ context.Context, identifier string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[identifier]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdatePasswordHash(_ context.Context, userID int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upgraded[userID] = hash
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = hash
		}
	}
	return nil
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestGate(health db.Health, store UserStore) *Gate {
	return NewGate(health, nil, NewStoreProvider(store, nil), NewStaticProvider(BootstrapCredentials()...))
}

func TestGateStoredUserReturnsExactRole(t *testing.T) {
	store := newMemoryUsers(
		&User{ID: 10, Email: "owner@office.local", PasswordHash: hashed(t, "s3cret"), FirstName: "Olive", LastName: "Owner", Role: roles.Proprietor, IsActive: true},
		&User{ID: 11, Email: "sam@office.local", PasswordHash: hashed(t, "pa55"), FirstName: "Sam", LastName: "Staff", Role: roles.Staff, IsActive: true},
	)
	gate := newTestGate(db.ReachableHealth(), store)

	res, err := gate.Authenticate(context.Background(), "owner@office.local", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, roles.Proprietor, res.Identity.Role)
	assert.Equal(t, int64(10), res.Identity.ID)
	assert.Equal(t, "Olive Owner", res.Identity.Name)
	assert.Equal(t, StoreProviderName, res.Provider)
	assert.False(t, res.Offline())

	res, err = gate.Authenticate(context.Background(), "sam@office.local", "pa55")
	require.NoError(t, err)
	assert.Equal(t, roles.Staff, res.Identity.Role)
}

func TestGateFailuresAreUniform(t *testing.T) {
	store := newMemoryUsers(&User{ID: 10, Email: "owner@office.local", PasswordHash: hashed(t, "s3cret"), Role: roles.Admin, IsActive: true})
	gate := newTestGate(db.ReachableHealth(), store)

	_, wrongCredential := gate.Authenticate(context.Background(), "owner@office.local", "nope")
	_, unknownIdentifier := gate.Authenticate(context.Background(), "ghost@office.local", "s3cret")
	_, empty := gate.Authenticate(context.Background(), "", "")

	for _, err := range []error{wrongCredential, unknownIdentifier, empty} {
		assert.Equal(t, shared.ErrInvalidCredentials, err)
	}
}

func TestGateInactiveUserRejected(t *testing.T) {
	store := newMemoryUsers(&User{ID: 4, Email: "gone@office.local", PasswordHash: hashed(t, "pw"), Role: roles.Staff, IsActive: false})
	_, err := newTestGate(db.ReachableHealth(), store).Authenticate(context.Background(), "gone@office.local", "pw")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestGateStoreUnreachableUsesFallbackOnly(t *testing.T) {
	store := newMemoryUsers(&User{ID: 10, Email: "owner@office.local", PasswordHash: hashed(t, "s3cret"), Role: roles.Admin, IsActive: true})
	gate := newTestGate(db.UnreachableHealth("dial tcp: refused"), store)

	res, err := gate.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, roles.Admin, res.Identity.Role)
	assert.True(t, res.Offline())

	res, err = gate.Authenticate(context.Background(), "user", "user123")
	require.NoError(t, err)
	assert.Equal(t, roles.Staff, res.Identity.Role)

	cases := [][2]string{
		{"owner@office.local", "s3cret"},
		{"admin", "user123"},
		{"user", "admin123"},
		{"Admin", "admin123"},
		{"admin", "admin123 "},
		{"root", "root"},
	}
	for _, c := range cases {
		_, err := gate.Authenticate(context.Background(), c[0], c[1])
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials, fmt.Sprintf("%v", c))
	}
}

func TestGateUnknownIdentityFallsBack(t *testing.T) {
	gate := newTestGate(db.ReachableHealth(), newMemoryUsers())
	res, err := gate.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, roles.Admin, res.Identity.Role)
	assert.Equal(t, StaticProviderName, res.Provider)
}

func TestGateStoredAdminShadowsFallback(t *testing.T) {
	store := newMemoryUsers(&User{ID: 1, Email: "admin", PasswordHash: hashed(t, "changed"), Role: roles.Admin, IsActive: true})
	gate := newTestGate(db.ReachableHealth(), store)

	_, err := gate.Authenticate(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestGateStoreErrorFallsBack(t *testing.T) {
	store := newMemoryUsers()
	store.findErr = fmt.Errorf("query: %w", shared.ErrStoreUnavailable)
	gate := newTestGate(db.ReachableHealth(), store)

	res, err := gate.Authenticate(context.Background(), "user", "user123")
	require.NoError(t, err)
	assert.Equal(t, roles.Staff, res.Identity.Role)

	_, err = gate.Authenticate(context.Background(), "someone", "pw")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestGateUnexpectedStoreErrorRejects(t *testing.T) {
	store := newMemoryUsers()
	store.findErr = errors.New("syntax error")
	_, err := newTestGate(db.ReachableHealth(), store).Authenticate(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLegacyCleartextIsUpgraded(t *testing.T) {
	store := newMemoryUsers(&User{ID: 2, Email: "user", PasswordHash: "user123", FirstName: "John", LastName: "Doe", Role: roles.Staff, IsActive: true})
	gate := newTestGate(db.ReachableHealth(), store)

	res, err := gate.Authenticate(context.Background(), "user", "user123")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", res.Identity.Name)
	assert.Equal(t, StoreProviderName, res.Provider)

	hash, ok := store.upgraded[2]
	require.True(t, ok)
	assert.True(t, IsHashed(hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("user123")))

	_, err = gate.Authenticate(context.Background(), "user", "user123")
	require.NoError(t, err)
	_, err = gate.Authenticate(context.Background(), "user", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestIsHashed(t *testing.T) {
	assert.True(t, IsHashed(hashed(t, "x")))
	assert.False(t, IsHashed("admin123"))
	assert.False(t, IsHashed("$2a$short"))
}
