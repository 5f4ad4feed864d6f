package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreybb/scriptcast/webutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(requests int, window time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(RateLimiter(requests, window))
	r.Get("/api/scripts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRateLimiterRejectsExcessRequests(t *testing.T) {
	const limit = 50
	router := rateLimitedRouter(limit, 15*time.Minute)

	for i := 0; i < limit; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
		req.RemoteAddr = "203.0.113.7:40112"
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	req.RemoteAddr = "203.0.113.7:40112"
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body webutil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTooManyRequests, body.StatusCode)
	assert.Equal(t, "Too many requests. Please try again later.", body.Message)
	assert.Equal(t, "/api/scripts", body.Path)
	assert.NotEmpty(t, body.Timestamp)
}

func TestRateLimiterKeysByClientAddress(t *testing.T) {
	router := rateLimitedRouter(1, time.Minute)

	first := httptest.NewRecorder()
	reqA := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	reqA.RemoteAddr = "192.0.2.10:51000"
	router.ServeHTTP(first, reqA)
	require.Equal(t, http.StatusOK, first.Code)

	throttled := httptest.NewRecorder()
	reqA2 := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	reqA2.RemoteAddr = "192.0.2.10:51001"
	router.ServeHTTP(throttled, reqA2)
	require.Equal(t, http.StatusTooManyRequests, throttled.Code)

	// A different client is tracked independently.
	other := httptest.NewRecorder()
	reqB := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	reqB.RemoteAddr = "198.51.100.23:51000"
	router.ServeHTTP(other, reqB)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiterFallsBackToDefaults(t *testing.T) {
	router := rateLimitedRouter(0, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/scripts", nil)
	req.RemoteAddr = "203.0.113.8:40112"
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRoutesServesHealthz(t *testing.T) {
	router := SetupRoutes(nil, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzIsNotRateLimited(t *testing.T) {
	router := SetupRoutes(nil, RouterConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
	})

	// Far past the admission budget; probes from one address stay green.
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.9:40112"
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "probe %d should pass", i+1)
	}
}
