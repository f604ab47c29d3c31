package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "officehub_session", "secret", time.Hour, false), mr
}

func TestSessionRoundTripThroughCookie(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	_, ok := sess.Principal()
	assert.False(t, ok)

	sess.SetPrincipal(shared.Principal{UserID: 7, Role: roles.Staff, Name: "John Doe", Email: "john@office.local"})
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	assert.True(t, mr.Exists("session:"+sess.ID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "officehub_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	p, ok := loaded.Principal()
	require.True(t, ok)
	assert.Equal(t, int64(7), p.UserID)
	assert.Equal(t, roles.Staff, p.Role)
	assert.Equal(t, "John Doe", p.Name)
}

func TestSessionLoadFromHeader(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetPrincipal(shared.Principal{UserID: 1, Role: roles.Admin})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, sess))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(shared.SessionHeader, sess.ID)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	p, ok := loaded.Principal()
	require.True(t, ok)
	assert.Equal(t, roles.Admin, p.Role)
}

func TestAnonymousSessionIsNotStored(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	assert.Empty(t, mr.Keys())
	assert.Empty(t, rec.Result().Cookies())
}

func TestUnknownSessionIDIsNotAdopted(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "forged"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "forged", sess.ID)
	assert.True(t, sess.IsNew())
}

func TestDestroyRemovesSession(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetPrincipal(shared.Principal{UserID: 3, Role: roles.Staff})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	_, ok := sess.Principal()
	assert.False(t, ok)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, nil, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestRenewChangesID(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetPrincipal(shared.Principal{UserID: 3, Role: roles.Staff})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, sess))
	oldID := sess.ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(shared.SessionHeader, oldID)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sm.Renew(ctx, loaded))
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), nil, loaded))

	assert.NotEqual(t, oldID, loaded.ID)
	assert.False(t, mr.Exists("session:"+oldID))
	assert.True(t, mr.Exists("session:"+loaded.ID))
}
