package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbtc-market-service/internal/infrastructure/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_BlocksAfterCapacity(t *testing.T) {
	mw := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 2, RefillRate: 1}, nil)
	handler := mw.Handler(okHandler())

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/tbtc", nil)
		req.RemoteAddr = "192.168.1.10:54321"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "Rate limit exceeded")
}

func TestRateLimitMiddleware_SkipsProbes(t *testing.T) {
	mw := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillRate: 1}, nil)
	handler := mw.Handler(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	mw := NewRateLimitMiddleware(config.RateLimitConfig{Enabled: false}, nil)
	handler := mw.Handler(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tbtc", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, false, mw.Stats()["enabled"])
}

func TestGetClientID(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote addr ipv4", "10.1.2.3:4000", nil, "10.1.2.3"},
		{"remote addr ipv6", "[::1]:4000", nil, "::1"},
		{"x-forwarded-for toma el primero", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"x-real-ip", "10.1.2.3:4000", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tbtc", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, GetClientID(req))
		})
	}
}
