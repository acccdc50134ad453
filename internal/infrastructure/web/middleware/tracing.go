package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"tbtc-market-service/internal/infrastructure/logging"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// maxIncomingRequestIDLength limita los IDs aceptados desde el cliente
const maxIncomingRequestIDLength = 128

// responseWriter captura el status code y el tamaño de la respuesta
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack permite el upgrade a WebSocket a través del wrapper
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestTracingMiddleware assigns a request ID, stores it with the start time
// in the request context and logs the completed request.
func RequestTracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxIncomingRequestIDLength {
			requestID = logging.GenerateRequestID()
		}

		startTime := time.Now()
		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = logging.WithStartTime(ctx, startTime)

		w.Header().Set(RequestIDHeader, requestID)

		wrapped := &responseWriter{ResponseWriter: w}

		method := r.Method
		path := r.URL.Path

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		statusCode := wrapped.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		logging.HTTPRequest(ctx, method, path, statusCode, logging.Fields{
			logging.FieldDuration: float64(time.Since(startTime).Nanoseconds()) / 1e6,
			"response_size":       wrapped.written,
		})
	})
}
