package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

func serve(t *testing.T, h http.Handler, principal *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAny(t *testing.T) {
	m := Middleware{Policy: DefaultPolicy()}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := m.RequireAny(shared.PermClientsView)(ok)

	rec := serve(t, h, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h, &shared.Principal{UserID: 5, Role: roles.Staff})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])

	rec = serve(t, h, &shared.Principal{UserID: 1, Role: roles.Proprietor})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAll(t *testing.T) {
	m := Middleware{Policy: DefaultPolicy()}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := m.RequireAll(shared.PermTasksView, shared.PermJobsView)(ok)

	assert.Equal(t, http.StatusForbidden, serve(t, h, &shared.Principal{UserID: 5, Role: roles.Staff}).Code)
	assert.Equal(t, http.StatusNoContent, serve(t, h, &shared.Principal{UserID: 1, Role: roles.Admin}).Code)
}

func TestPermissionsHandler(t *testing.T) {
	m := Middleware{Policy: DefaultPolicy()}
	r := chi.NewRouter()
	NewPermissionsHandler(DefaultPolicy(), m).MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/permissions", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 9, Role: roles.Staff}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Role        string   `json:"role"`
			Elevated    bool     `json:"elevated"`
			Permissions []string `json:"permissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "staff", body.Data.Role)
	assert.False(t, body.Data.Elevated)
	assert.NotContains(t, body.Data.Permissions, shared.PermClientsView)
	assert.Contains(t, body.Data.Permissions, shared.PermTasksView)
}
