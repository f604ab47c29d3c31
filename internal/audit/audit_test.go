package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

type stubTimelineRepo struct {
	rows       []TimelineRow
	lastFilter TimelineFilters
	lastOffset int
	lastLimit  int
}

func (s *stubTimelineRepo) Timeline(_ context.Context, f TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	s.lastFilter, s.lastOffset, s.lastLimit = f, offset, limit
	if len(s.rows) > limit {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func sampleRows(n int) []TimelineRow {
	rows := make([]TimelineRow, n)
	for i := range rows {
		rows[i] = TimelineRow{ID: int64(n - i), Action: "leave.approved", Entity: "leave", EntityID: "7"}
	}
	return rows
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: sampleRows(3)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Equal(t, 3, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	result, err = svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lastOffset)
	assert.Equal(t, 1, result.Paging.PrevPage)
}

func TestServiceClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	_, err := NewService(repo).Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize+1, repo.lastLimit)
}

func TestServiceRejectsInvertedRange(t *testing.T) {
	_, err := NewService(&stubTimelineRepo{}).Timeline(context.Background(), TimelineFilters{
		From: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestHandlerTimeline(t *testing.T) {
	repo := &stubTimelineRepo{rows: sampleRows(1)}
	r := chi.NewRouter()
	NewHandler(NewService(repo), rbac.Middleware{Policy: rbac.DefaultPolicy()}, httpx.Responder{}).MountRoutes(r)

	call := func(p shared.Principal, target string) (int, httpx.Envelope) {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		var env httpx.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec.Code, env
	}

	owner := shared.Principal{UserID: 1, Role: roles.Proprietor}
	code, env := call(owner, "/audit?entity=leave&actorId=4&from=2024-03-01&to=2024-03-31")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "leave", repo.lastFilter.Entity)
	require.NotNil(t, repo.lastFilter.ActorID)
	assert.Equal(t, int64(4), *repo.lastFilter.ActorID)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), repo.lastFilter.To)
	assert.Len(t, env.Data.(map[string]any)["rows"], 1)

	code, _ = call(owner, "/audit?from=March")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(shared.Principal{UserID: 3, Role: roles.Staff}, "/audit")
	assert.Equal(t, http.StatusForbidden, code)
}
