package leaves

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

type memoryRepo struct {
	leaves    map[int64]*Leave
	nextID    int64
	createErr error
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{leaves: map[int64]*Leave{}, nextID: 1} }

func (m *memoryRepo) List(_ context.Context, f ListFilter) ([]Leave, error) {
	out := []Leave{}
	for id := int64(1); id < m.nextID; id++ {
		l, ok := m.leaves[id]
		if !ok || (f.UserID != nil && l.UserID != *f.UserID) || (f.Status != "" && l.Status != f.Status) {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Leave, error) {
	l, ok := m.leaves[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memoryRepo) Create(_ context.Context, n NewLeave) (*Leave, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	l := &Leave{ID: m.nextID, UserID: n.UserID, Type: n.Type, StartDate: n.StartDate.Format(DateLayout), EndDate: n.EndDate.Format(DateLayout), Days: n.Days, Reason: n.Reason, Status: shared.ApprovalPending}
	m.leaves[l.ID] = l
	m.nextID++
	cp := *l
	return &cp, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status shared.ApprovalStatus, approver *int64, at *time.Time) (*Leave, error) {
	l, ok := m.leaves[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	l.Status, l.ApprovedByID, l.ApprovedAt = status, approver, at
	cp := *l
	return &cp, nil
}

type captureAudit struct{ logs []shared.AuditLog }

func (c *captureAudit) Record(_ context.Context, l shared.AuditLog) error {
	c.logs = append(c.logs, l)
	return nil
}

var (
	staff = shared.Principal{UserID: 3, Role: roles.Staff}
	owner = shared.Principal{UserID: 2, Role: roles.Proprietor}
)

func newIdempotency(t *testing.T) *shared.IdempotencyStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewIdempotencyStore(client, time.Hour)
}

func date(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func TestInclusiveDays(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-03-11", "2024-03-11", 1},
		{"2024-03-11", "2024-03-15", 5},
		{"2024-02-28", "2024-03-01", 3},
		{"2024-03-30", "2024-04-02", 4},
	}
	for _, tc := range cases {
		days, err := InclusiveDays(date(tc.start), date(tc.end))
		require.NoError(t, err)
		assert.Equal(t, tc.want, days, tc.start+".."+tc.end)
	}
	_, err := InclusiveDays(date("2024-03-15"), date("2024-03-11"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRequestComputesDaysAndScopes(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	l, err := svc.Request(ctx, staff, CreateLeaveRequest{Type: "vacation", StartDate: "2024-03-11", EndDate: "2024-03-15", Reason: " trip "}, "")
	require.NoError(t, err)
	assert.Equal(t, 5, l.Days)
	assert.Equal(t, "trip", l.Reason)
	assert.Equal(t, shared.ApprovalPending, l.Status)

	_, err = svc.Request(ctx, owner, CreateLeaveRequest{Type: "sick", StartDate: "2024-03-12", EndDate: "2024-03-12"}, "")
	require.NoError(t, err)

	own, err := svc.List(ctx, staff, "")
	require.NoError(t, err)
	assert.Len(t, own, 1)
	all, err := svc.List(ctx, owner, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Request(ctx, staff, CreateLeaveRequest{Type: "sick", StartDate: "2024-03-15", EndDate: "2024-03-11"}, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRequestIdempotency(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, newIdempotency(t), nil)
	ctx := context.Background()
	req := CreateLeaveRequest{Type: "casual", StartDate: "2024-03-11", EndDate: "2024-03-11"}

	_, err := svc.Request(ctx, staff, req, "key-1")
	require.NoError(t, err)
	_, err = svc.Request(ctx, staff, req, "key-1")
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Len(t, repo.leaves, 1)

	repo.createErr = errors.New("boom")
	_, err = svc.Request(ctx, staff, req, "key-2")
	require.Error(t, err)
	repo.createErr = nil
	_, err = svc.Request(ctx, staff, req, "key-2")
	assert.NoError(t, err, "a failed submission releases its key")
}

func TestReviewStampsApproverAndAudits(t *testing.T) {
	repo := newMemoryRepo()
	audit := &captureAudit{}
	svc := NewService(repo, audit, nil, nil)
	fixed := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	l, err := svc.Request(ctx, staff, CreateLeaveRequest{Type: "sick", StartDate: "2024-03-11", EndDate: "2024-03-12"}, "")
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, owner, l.ID, shared.ApprovalApproved, "get well")
	require.NoError(t, err)
	assert.Equal(t, shared.ApprovalApproved, reviewed.Status)
	require.NotNil(t, reviewed.ApprovedByID)
	assert.Equal(t, int64(2), *reviewed.ApprovedByID)
	assert.Equal(t, fixed, *reviewed.ApprovedAt)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "leave.approved", audit.logs[0].Action)

	reset, err := svc.Review(ctx, owner, l.ID, shared.ApprovalPending, "")
	require.NoError(t, err)
	assert.Nil(t, reset.ApprovedByID)
	assert.Nil(t, reset.ApprovedAt)

	_, err = svc.Review(ctx, owner, 99, shared.ApprovalRejected, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Leave request rejected", Message(shared.ApprovalRejected))
}

func TestHandlerApprovalNeedsPermission(t *testing.T) {
	repo := newMemoryRepo()
	h := NewHandler(nil, NewService(repo, nil, newIdempotency(t), nil), rbac.Middleware{Policy: rbac.DefaultPolicy()}, httpx.Responder{})
	r := chi.NewRouter()
	h.MountRoutes(r)

	send := func(p shared.Principal, method, target, body, key string) int {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if key != "" {
			req.Header.Set(shared.IdempotencyHeader, key)
		}
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	body := `{"type":"sick","startDate":"2024-03-11","endDate":"2024-03-12"}`
	assert.Equal(t, http.StatusCreated, send(staff, http.MethodPost, "/leaves", body, "k"))
	assert.Equal(t, http.StatusConflict, send(staff, http.MethodPost, "/leaves", body, "k"))
	assert.Equal(t, http.StatusBadRequest, send(staff, http.MethodPost, "/leaves", `{"type":"sabbatical","startDate":"2024-03-11","endDate":"2024-03-12"}`, ""))
	assert.Equal(t, http.StatusBadRequest, send(staff, http.MethodPost, "/leaves", `{"type":"sick","startDate":"2024-03-12","endDate":"2024-03-11"}`, ""))
	assert.Equal(t, http.StatusForbidden, send(staff, http.MethodPut, "/leaves/1/status", `{"status":"approved"}`, ""))
	assert.Equal(t, http.StatusOK, send(owner, http.MethodPut, "/leaves/1/status", `{"status":"approved"}`, ""))
	assert.Equal(t, http.StatusBadRequest, send(owner, http.MethodPut, "/leaves/1/status", `{"status":"maybe"}`, ""))
}
