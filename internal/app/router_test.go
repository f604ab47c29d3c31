package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"sync"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/officehub/officehub/internal/auth"
	"github.com/officehub/officehub/internal/observability"
	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
	"github.com/officehub/officehub/jobs"
)

// accountTable is a map-backed user store. Identifiers it does not know fall
// through to the static table.
type accountTable struct {
	mu    sync.Mutex
	users map[int64]*auth.User
}

func (a *accountTable) FindByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if strings.EqualFold(u.Email, identifier) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (a *accountTable) FindByID(_ context.Context, id int64) (*auth.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (a *accountTable) edit(id int64, fn func(*auth.User)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.users[id])
}

func (a *accountTable) UpdatePasswordHash(context.Context, int64, string) error { return nil }
func (a *accountTable) CreateSession(context.Context, string, int64, time.Time, string, string) error {
	return nil
}
func (a *accountTable) DeleteSession(context.Context, string) error { return nil }
func (a *accountTable) DeleteExpiredSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(t *testing.T, health db.Health) http.Handler {
	t.Helper()
	return newTestRouterWith(t, health, &accountTable{})
}

func newTestRouterWith(t *testing.T, health db.Health, accounts *accountTable) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", time.Hour, false)
	policy := rbac.DefaultPolicy()
	mw := rbac.Middleware{Policy: policy}
	gate := auth.NewGate(health, nil, auth.NewStoreProvider(accounts, nil), auth.NewStaticProvider(auth.BootstrapCredentials()...))
	metrics := observability.NewMetrics()

	return NewRouter(RouterParams{
		Config:             &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000},
		Accounts:           accounts,
		SessionManager:     sessions,
		Health:             health,
		RBACMiddleware:     mw,
		Metrics:            metrics,
		AuthHandler:        auth.NewHandler(nil, auth.NewService(gate, accounts, nil), sessions, httpx.Responder{}).WithObserver(metrics),
		PermissionsHandler: rbac.NewPermissionsHandler(policy, mw),
		JobHandler:         jobs.NewHandler(nil, nil),
		Static: fstest.MapFS{
			"index.html":    {Data: []byte("<html>officehub</html>")},
			"assets/app.js": {Data: []byte("console.log(1)")},
		},
	})
}

func storedUser(t *testing.T, id int64, email, password string, role roles.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{ID: id, Email: email, PasswordHash: hash, FirstName: "Test", Role: role, IsActive: true}
}

func login(t *testing.T, h http.Handler, user, pass string) string {
	t.Helper()
	body := `{"username":"` + user + `","password":"` + pass + `"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := rec.Header().Get(shared.SessionHeader)
	require.NotEmpty(t, token)
	return token
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(shared.SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReportsStore(t *testing.T) {
	h := newTestRouter(t, db.UnreachableHealth("refused"))
	rec := get(h, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"unreachable"}`, rec.Body.String())
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	h := newTestRouter(t, db.ReachableHealth())

	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/jobs/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/me", "").Code)

	admin := login(t, h, "admin", "admin123")
	assert.Equal(t, http.StatusOK, get(h, "/api/jobs/health", admin).Code)

	rec := get(h, "/api/permissions", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, true, env.Data.(map[string]any)["elevated"])

	staff := login(t, h, "user", "user123")
	assert.Equal(t, http.StatusForbidden, get(h, "/api/jobs/health", staff).Code)
}

func TestStoreGuardWhenOffline(t *testing.T) {
	h := newTestRouter(t, db.UnreachableHealth("refused"))

	admin := login(t, h, "admin", "admin123")
	assert.Equal(t, http.StatusOK, get(h, "/api/me", admin).Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/api/jobs/health", admin).Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/permissions", admin).Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/api/me-too", admin).Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/api/permissionsx", admin).Code)
}

func TestDeactivatedAccountLosesSession(t *testing.T) {
	accounts := &accountTable{users: map[int64]*auth.User{
		7: storedUser(t, 7, "sam@office.test", "sam-pass-1", roles.Staff),
	}}
	h := newTestRouterWith(t, db.ReachableHealth(), accounts)

	token := login(t, h, "sam@office.test", "sam-pass-1")
	require.Equal(t, http.StatusOK, get(h, "/api/me", token).Code)

	accounts.edit(7, func(u *auth.User) { u.IsActive = false })
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/me", token).Code)

	// reactivation does not bring the revoked session back
	accounts.edit(7, func(u *auth.User) { u.IsActive = true })
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/me", token).Code)
}

func TestDeletedAccountLosesSession(t *testing.T) {
	accounts := &accountTable{users: map[int64]*auth.User{
		7: storedUser(t, 7, "sam@office.test", "sam-pass-1", roles.Staff),
	}}
	h := newTestRouterWith(t, db.ReachableHealth(), accounts)

	token := login(t, h, "sam@office.test", "sam-pass-1")
	accounts.mu.Lock()
	delete(accounts.users, 7)
	accounts.mu.Unlock()
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/permissions", token).Code)
}

func TestRoleChangeAppliesToLiveSession(t *testing.T) {
	accounts := &accountTable{users: map[int64]*auth.User{
		8: storedUser(t, 8, "olive@office.test", "olive-pass-1", roles.Proprietor),
	}}
	h := newTestRouterWith(t, db.ReachableHealth(), accounts)

	token := login(t, h, "olive@office.test", "olive-pass-1")
	require.Equal(t, http.StatusOK, get(h, "/api/jobs/health", token).Code)

	accounts.edit(8, func(u *auth.User) { u.Role = roles.Staff })
	assert.Equal(t, http.StatusForbidden, get(h, "/api/jobs/health", token).Code)

	rec := get(h, "/api/permissions", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, false, env.Data.(map[string]any)["elevated"])
}

func TestSPAFallback(t *testing.T) {
	h := newTestRouter(t, db.ReachableHealth())

	rec := get(h, "/tasks/12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "officehub")

	rec = get(h, "/assets/app.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = get(h, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, db.ReachableHealth())
	_ = get(h, "/healthz", "")
	rec := get(h, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "officehub_http_requests_total")
}
