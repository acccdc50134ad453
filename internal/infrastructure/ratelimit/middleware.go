package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/metrics"
)

// RateLimitMiddleware provides rate limiting for HTTP requests
type RateLimitMiddleware struct {
	limiter   *RateLimiterCollection
	skipPaths map[string]bool
	enabled   bool
	logger    logging.SecurityLogger
}

// NewRateLimitMiddleware creates a rate limiting middleware from configuration
func NewRateLimitMiddleware(rateLimitConfig config.RateLimitConfig, logger logging.SecurityLogger) *RateLimitMiddleware {
	// Probes and scrapes never spawn the upstream process
	skipPaths := map[string]bool{
		"/health":  true,
		"/ready":   true,
		"/metrics": true,
	}

	var limiter *RateLimiterCollection
	if rateLimitConfig.Enabled {
		limiter = NewRateLimiterCollection(rateLimitConfig.Capacity, rateLimitConfig.RefillRate)
		limiter.OnEvict(metrics.RemoveRateLimitTokens)
	}

	return &RateLimitMiddleware{
		limiter:   limiter,
		skipPaths: skipPaths,
		enabled:   rateLimitConfig.Enabled,
		logger:    logger,
	}
}

// Handler returns the HTTP middleware handler
func (rlm *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rlm.enabled || rlm.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := GetClientID(r)

		allowed := rlm.limiter.Allow(clientID)
		tokensRemaining := rlm.limiter.Tokens(clientID)

		metrics.RecordRateLimitResult(allowed)
		metrics.UpdateRateLimitTokens(clientID, float64(tokensRemaining))

		if !allowed {
			if rlm.logger != nil {
				rlm.logger.RateLimitExceeded(r.Context(), clientID, r.URL.Path)
			}
			writeRateLimitError(w)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rlm.limiter.capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(tokensRemaining))

		next.ServeHTTP(w, r)
	})
}

// GetClientID extracts a client identifier from the request.
// It is the key for rate limiting buckets.
func GetClientID(r *http.Request) string {
	// Try to get real IP from headers (reverse proxy/load balancer)
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		first, _, _ := strings.Cut(xForwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}

// writeRateLimitError writes a rate limit exceeded error response
func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"detail": "Rate limit exceeded. Please slow down your requests.",
	})
}

// Stats returns rate limiting statistics
func (rlm *RateLimitMiddleware) Stats() map[string]interface{} {
	stats := map[string]interface{}{}
	if rlm.limiter != nil {
		stats = rlm.limiter.Stats()
	}
	stats["enabled"] = rlm.enabled
	return stats
}
