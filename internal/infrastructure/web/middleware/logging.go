package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/ratelimit"
)

// maxRequestBodySize marca como sospechosa cualquier petición más grande.
// Ningún endpoint acepta body.
const maxRequestBodySize = 64 * 1024

var suspiciousPatterns = []string{
	"../",
	"<script",
	"union select",
	"drop table",
	"exec(",
	"eval(",
	"$(",
}

// LoggingMiddleware emits debug request details and flags suspicious requests.
// RequestTracingMiddleware logs the request outcome; this one complements it.
type LoggingMiddleware struct {
	httpLogger     logging.HTTPLogger
	securityLogger logging.SecurityLogger
}

// NewLoggingMiddleware crea el middleware; nil loggers usan los globales
func NewLoggingMiddleware(httpLogger logging.HTTPLogger, securityLogger logging.SecurityLogger) *LoggingMiddleware {
	if httpLogger == nil {
		httpLogger = logging.HTTP()
	}
	if securityLogger == nil {
		securityLogger = logging.Security()
	}
	return &LoggingMiddleware{
		httpLogger:     httpLogger,
		securityLogger: securityLogger,
	}
}

// Handler wraps next with request logging
func (lm *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := ratelimit.GetClientID(r)

		lm.httpLogger.RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), clientIP)
		lm.httpLogger.Debug(ctx, "Request details", logging.Fields{
			logging.FieldHeaders: extractImportantHeaders(r),
			logging.FieldQuery:   r.URL.RawQuery,
			"content_length":     r.ContentLength,
		})

		if reason := suspiciousReason(r); reason != "" {
			lm.securityLogger.SuspiciousActivity(ctx, clientIP, reason)
		}

		next.ServeHTTP(w, r)
	})
}

// extractImportantHeaders devuelve cabeceras útiles para depurar, sin datos sensibles
func extractImportantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)

	for _, header := range []string{
		"Accept",
		"Accept-Encoding",
		"Connection",
		"Upgrade",
		"X-Forwarded-For",
		"X-Real-IP",
	} {
		if value := r.Header.Get(header); value != "" {
			headers[header] = value
		}
	}

	return headers
}

// suspiciousReason returns why a request looks like an attack, or "" if it does not
func suspiciousReason(r *http.Request) string {
	path := strings.ToLower(r.URL.Path)
	query := r.URL.RawQuery
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	query = strings.ToLower(query)

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return "suspicious_pattern:" + pattern
		}
	}

	if r.ContentLength > maxRequestBodySize {
		return "oversized_body"
	}

	return ""
}
