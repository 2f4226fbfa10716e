package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	mw := AuthMiddleware("secret", nil, NewAbuseDetector())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set(headerAPIKey, "secret")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	mw := AuthMiddleware("secret", nil, NewAbuseDetector())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set(headerAPIKey, "wrong")
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_PublicPathsBypass(t *testing.T) {
	mw := AuthMiddleware("secret", nil, NewAbuseDetector())

	for _, path := range publicPaths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		mw(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "path %s should bypass auth", path)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	mw := SecurityHeadersMiddleware()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	detector := NewAbuseDetector()
	mw := RateLimitMiddleware(nil, detector)
	h := mw(okHandler())

	var lastCode int
	for i := 0; i < 1001; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestExtractIP_UntrustedProxyIgnoresForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4567"
	req.Header.Set(headerForwardedFor, "198.51.100.1")

	assert.Equal(t, "203.0.113.7", extractIP(req, nil))
}

func TestExtractIP_TrustedProxyUsesForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	req.Header.Set(headerForwardedFor, "198.51.100.1, 10.0.0.2")

	assert.Equal(t, "10.0.0.2", extractIP(req, []string{"10.0.0.1"}))
}
