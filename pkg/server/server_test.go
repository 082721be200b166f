package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gridscope/gridscope/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// newTestServer builds a Server wired to the given forecast mock and an
// in-memory preference store, running in single-user mode.
func newTestServer(f ForecastService) *Server {
	return &Server{
		forecast:        f,
		storage:         storage.NewMemory(),
		metrics:         newMetrics(),
		bypassAuth:      true,
		defaultTimezone: "America/Los_Angeles",
		serverName:      "gridscope-test",
	}
}

// withTestUser attaches the single-user identity the auth middleware would
// have resolved.
func withTestUser(req *http.Request) *http.Request {
	ctx := withUser(req.Context(), User{ID: DefaultUserID, Admin: true})
	return req.WithContext(ctx)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&mockForecast{})
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	srv.handleHealthz(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "ok", w.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(&mockForecast{})
	handler := srv.securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	h := w.Result().Header
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.NotEmpty(t, h.Get("Strict-Transport-Security"))
	assert.NotEmpty(t, h.Get("Referrer-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
}

func TestRevisionMiddleware(t *testing.T) {
	srv := newTestServer(&mockForecast{})
	handler := srv.revisionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "gridscope-test", w.Result().Header.Get("Server"))
}

func TestRequestMetricsBoundedLabels(t *testing.T) {
	srv := newTestServer(&mockForecast{})
	handler := srv.setupHandler()

	before := testutil.CollectAndCount(srv.metrics.requestsTotal)
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("GET", fmt.Sprintf("/junk-%d.php", i), nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}
	after := testutil.CollectAndCount(srv.metrics.requestsTotal)

	// all of these fall through to the SPA route, so at most one new
	// route label appears no matter how many distinct paths were probed
	assert.LessOrEqual(t, after-before, 2, "unique request paths must not mint new metric series")
}

func TestRequestMiddlewareLabelsUnroutedRequests(t *testing.T) {
	srv := newTestServer(&mockForecast{})
	handler := srv.requestMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/does-not-route", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	got := testutil.ToFloat64(srv.metrics.requestsTotal.WithLabelValues("other", "404"))
	assert.GreaterOrEqual(t, got, 1.0, "requests without a matched pattern collapse to the other label")
}

func TestRequestMiddlewareSetsRequestID(t *testing.T) {
	srv := newTestServer(&mockForecast{})
	handler := srv.requestMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/api/models", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode)
	assert.NotEmpty(t, w.Result().Header.Get("X-Request-ID"))
}
