package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/tasks/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"7", "8"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/tasks/{id}", "418")))
}

func TestHandlerExposesJobAndHTTPSeries(t *testing.T) {
	m := NewMetrics()
	require.NoError(t, m.Jobs.Track("sessions:cleanup").End(nil))
	m.requestsTotal.WithLabelValues("/api/me", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `officehub_jobs_total{job="sessions:cleanup",status="success"} 1`)
	assert.Contains(t, body, `officehub_http_requests_total{code="200",route="/api/me"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestObserveLogin(t *testing.T) {
	m := NewMetrics()
	m.ObserveLogin("fallback", true)
	m.ObserveLogin("", false)
	m.ObserveLogin("", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("fallback", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("none", "rejected")))
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	m.ObserveLogin("store", true)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
