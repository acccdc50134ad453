package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPMetricsMiddleware collects HTTP metrics for Prometheus
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Wrap response writer to capture metrics
		wrapped := &responseWriterMetrics{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 if WriteHeader is not called
		}

		// Extract normalized path (to avoid high cardinality)
		normalizedPath := normalizePath(r.URL.Path)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(startTime).Seconds()
		RecordHTTPRequest(r.Method, normalizedPath, wrapped.statusCode, duration, wrapped.written)
	})
}

// responseWriterMetrics wraps http.ResponseWriter to capture metrics
type responseWriterMetrics struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

// WriteHeader captures the status code
func (rw *responseWriterMetrics) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size
func (rw *responseWriterMetrics) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack lets the websocket upgrader take over the connection
func (rw *responseWriterMetrics) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *responseWriterMetrics) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath normalizes URL paths to avoid high cardinality in metrics
func normalizePath(path string) string {
	if path == "/" {
		return "/"
	}

	path = strings.TrimSuffix(path, "/")

	switch {
	case path == "/tbtc":
		return "/tbtc"
	case path == "/health":
		return "/health"
	case path == "/ready":
		return "/ready"
	case path == "/metrics":
		return "/metrics"
	case path == "/ws/tbtc":
		return "/ws/tbtc"
	case strings.HasPrefix(path, "/api/v1/tbtc/last"):
		return "/api/v1/tbtc/last"
	case strings.HasPrefix(path, "/api/v1/"):
		return "/api/v1/*"
	case strings.HasPrefix(path, "/swagger"), path == "/docs":
		return "/swagger/*"
	default:
		return "/unknown"
	}
}
