package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billbook/billbook/internal/observability"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func TestMetrics_Middleware(t *testing.T) {
	m := observability.NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/invoices/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/v1/invoices/1", "/api/v1/invoices/2", "/api/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `billbook_http_requests_total{code="404",method="GET",route="/api/v1/invoices/{id}"} 2`)
	assert.Contains(t, body, `billbook_http_requests_total{code="200",method="GET",route="/api/health"} 1`)
}

func TestMetrics_DomainCounters(t *testing.T) {
	m := observability.NewMetrics()

	m.NumberFallback()
	m.NumberFallback()
	m.CacheHit("dashboard")
	m.CacheMiss("gst")

	body := scrape(t, m)
	assert.Contains(t, body, "billbook_invoice_number_fallback_total 2")
	assert.Contains(t, body, `billbook_report_cache_hits_total{report="dashboard"} 1`)
	assert.Contains(t, body, `billbook_report_cache_misses_total{report="gst"} 1`)
}

func TestMetrics_Nil(t *testing.T) {
	var m *observability.Metrics

	assert.NotPanics(t, func() {
		m.NumberFallback()
		m.CacheHit("gst")
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
