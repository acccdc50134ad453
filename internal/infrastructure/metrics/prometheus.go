package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the tBTC market service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbtc_market_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tbtc_market_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			// /tbtc waits for a subprocess, so the tail goes up to the upstream timeout
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45},
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tbtc_market_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Upstream process Metrics
	UpstreamInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbtc_market_upstream_invocations_total",
			Help: "Total number of upstream process invocations by outcome",
		},
		[]string{"outcome"}, // outcome: success/process_error/timeout/empty/malformed
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tbtc_market_upstream_duration_seconds",
			Help:    "Upstream process wall-clock duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"outcome"},
	)

	UpstreamOutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tbtc_market_upstream_output_bytes",
			Help:    "Size of the upstream stdout in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	UpstreamInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tbtc_market_upstream_in_flight",
			Help: "Number of upstream processes currently running",
		},
	)

	// Snapshot Metrics
	SnapshotAgeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tbtc_market_snapshot_age_seconds",
			Help: "Age of the last market snapshot served by /api/v1/tbtc/last",
		},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbtc_market_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"}, // operation: get/set/delete, result: hit/miss/success/error
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tbtc_market_cache_keys",
			Help: "Number of keys currently in cache",
		},
		[]string{"cache_type"}, // cache_type: memory/redis
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbtc_market_rate_limit_requests_total",
			Help: "Total number of requests processed by rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	RateLimitTokensRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tbtc_market_rate_limit_tokens_remaining",
			Help: "Number of tokens remaining in rate limiter buckets",
		},
		[]string{"client_id"},
	)

	// WebSocket Metrics
	WebSocketSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tbtc_market_ws_sessions",
			Help: "Number of open /ws/tbtc sessions",
		},
	)

	WebSocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbtc_market_ws_messages_total",
			Help: "Total number of WebSocket frames by direction and type",
		},
		[]string{"direction", "type"}, // direction: in/out, type: request/market/error
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tbtc_market_application_info",
			Help: "Application information",
		},
		[]string{"version", "build_time", "go_version"},
	)

	UptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tbtc_market_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// Outcome labels for upstream invocations
const (
	OutcomeSuccess      = "success"
	OutcomeProcessError = "process_error"
	OutcomeTimeout      = "timeout"
	OutcomeEmpty        = "empty"
	OutcomeMalformed    = "malformed"
)

// Helper functions for common metric operations

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordUpstreamInvocation records the outcome of one upstream process run
func RecordUpstreamInvocation(outcome string, durationSeconds float64, stdoutBytes int) {
	UpstreamInvocationsTotal.WithLabelValues(outcome).Inc()
	UpstreamDuration.WithLabelValues(outcome).Observe(durationSeconds)
	if outcome == OutcomeSuccess {
		UpstreamOutputBytes.Observe(float64(stdoutBytes))
	}
}

// TrackUpstreamInFlight increments the in-flight gauge and returns the matching decrement
func TrackUpstreamInFlight() func() {
	UpstreamInFlight.Inc()
	return UpstreamInFlight.Dec
}

// UpdateSnapshotAge updates the snapshot age gauge
func UpdateSnapshotAge(ageSeconds float64) {
	SnapshotAgeSeconds.Set(ageSeconds)
}

// RecordCacheOperation records cache operation metrics
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheKeys updates the number of keys held by a cache backend
func UpdateCacheKeys(cacheType string, keys int) {
	CacheKeys.WithLabelValues(cacheType).Set(float64(keys))
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// UpdateRateLimitTokens updates remaining tokens gauge
func UpdateRateLimitTokens(clientID string, tokens float64) {
	RateLimitTokensRemaining.WithLabelValues(clientID).Set(tokens)
}

// RemoveRateLimitTokens drops the gauge series of an evicted client
func RemoveRateLimitTokens(clientID string) {
	RateLimitTokensRemaining.DeleteLabelValues(clientID)
}

// TrackWebSocketSession increments the session gauge and returns the matching decrement
func TrackWebSocketSession() func() {
	WebSocketSessions.Inc()
	return WebSocketSessions.Dec
}

// RecordWebSocketMessage records an inbound or outbound WebSocket frame
func RecordWebSocketMessage(direction, msgType string) {
	WebSocketMessagesTotal.WithLabelValues(direction, msgType).Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, buildTime, goVersion string) {
	ApplicationInfo.WithLabelValues(version, buildTime, goVersion).Set(1)
}

// UpdateUptime updates application uptime
func UpdateUptime(seconds float64) {
	UptimeSeconds.Set(seconds)
}
