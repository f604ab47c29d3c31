package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

type memoryRepo struct {
	items  map[int64]*Product
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]*Product{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, f ListFilter) ([]Product, error) {
	out := []Product{}
	for id := int64(1); id < m.nextID; id++ {
		p, ok := m.items[id]
		if !ok || (f.ActiveOnly && !p.IsActive) || (f.Category != "" && p.Category != f.Category) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) Create(_ context.Context, p Product) (*Product, error) {
	p.ID = m.nextID
	m.nextID++
	m.items[p.ID] = &p
	cp := p
	return &cp, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, updates map[string]any) (*Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "name":
			p.Name = v.(string)
		case "is_active":
			p.IsActive = v.(bool)
		case "features":
			p.Features = v.([]string)
		case "premium_starting":
			f := v.(float64)
			p.PremiumStarting = &f
		}
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newRouter(repo Repository) http.Handler {
	h := NewHandler(NewService(repo), rbac.Middleware{Policy: rbac.DefaultPolicy()}, httpx.Responder{})
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func send(t *testing.T, h http.Handler, p shared.Principal, method, target, body string) (int, httpx.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

var (
	owner = shared.Principal{UserID: 2, Role: roles.Proprietor}
	staff = shared.Principal{UserID: 3, Role: roles.Staff}
)

const lifePlan = `{"name":"Life Plus","category":"life","description":"Whole life cover for the family","premiumStarting":1200,"coverageAmount":500000,"features":["  Accidental death ", ""]}`

func TestCreateProductDefaults(t *testing.T) {
	repo := newMemoryRepo()
	h := newRouter(repo)

	code, env := send(t, h, owner, http.MethodPost, "/products", lifePlan)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Product created successfully", env.Message)

	stored := repo.items[1]
	assert.Equal(t, DefaultDuration, stored.Duration)
	assert.Equal(t, "Whole life cover for the family...", stored.ShortDescription)
	assert.Equal(t, []string{"Accidental death"}, stored.Features)
	require.NotNil(t, stored.CreatedByID)
	assert.Equal(t, int64(2), *stored.CreatedByID)
	assert.True(t, stored.IsActive)
}

func TestCreateProductValidation(t *testing.T) {
	h := newRouter(newMemoryRepo())

	code, env := send(t, h, owner, http.MethodPost, "/products", `{"name":"X","category":"pets","description":"d","premiumStarting":1,"coverageAmount":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, env.Errors)

	code, _ = send(t, h, owner, http.MethodPost, "/products", `{"name":"X","category":"life","description":"d","premiumStarting":0,"coverageAmount":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStaffSeesActiveCatalogueOnly(t *testing.T) {
	repo := newMemoryRepo()
	h := newRouter(repo)
	_, _ = send(t, h, owner, http.MethodPost, "/products", lifePlan)
	_, _ = send(t, h, owner, http.MethodPost, "/products", strings.Replace(lifePlan, "Life Plus", "Life Legacy", 1))

	code, _ := send(t, h, owner, http.MethodPut, "/products/2", `{"isActive":false}`)
	require.Equal(t, http.StatusOK, code)

	_, env := send(t, h, staff, http.MethodGet, "/products", "")
	assert.Len(t, env.Data, 1)
	_, env = send(t, h, owner, http.MethodGet, "/products", "")
	assert.Len(t, env.Data, 2)

	code, _ = send(t, h, staff, http.MethodGet, "/products/2", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = send(t, h, owner, http.MethodGet, "/products/2", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestStaffCannotManageProducts(t *testing.T) {
	h := newRouter(newMemoryRepo())
	for _, tc := range []struct{ method, target, body string }{
		{http.MethodPost, "/products", lifePlan},
		{http.MethodPut, "/products/1", `{"name":"x"}`},
		{http.MethodDelete, "/products/1", ""},
	} {
		code, _ := send(t, h, staff, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusForbidden, code, tc.method+" "+tc.target)
	}
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	repo := newMemoryRepo()
	h := newRouter(repo)
	_, _ = send(t, h, owner, http.MethodPost, "/products", lifePlan)

	code, env := send(t, h, owner, http.MethodPut, "/products/1", `{"premiumStarting":1500,"features":["a"," b "]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Product updated successfully", env.Message)
	assert.Equal(t, 1500.0, *repo.items[1].PremiumStarting)
	assert.Equal(t, []string{"a", "b"}, repo.items[1].Features)

	code, env = send(t, h, owner, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Product deleted successfully", env.Message)
	code, _ = send(t, h, owner, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFeatureCodec(t *testing.T) {
	s, err := EncodeFeatures(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	got, err := DecodeFeatures([]byte(`["x","y"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)

	got, err = DecodeFeatures(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeFeatures([]byte(`{`))
	assert.Error(t, err)
}

func TestShortDescriptionTruncates(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := ShortDescription(long)
	assert.Equal(t, strings.Repeat("é", 120)+"...", got)
}
