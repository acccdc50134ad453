package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"tbtc-market-service/internal/application/dto"
	_ "tbtc-market-service/internal/docs"
	"tbtc-market-service/internal/infrastructure/metrics"
	"tbtc-market-service/internal/infrastructure/ratelimit"
	"tbtc-market-service/internal/infrastructure/web/handlers"
	"tbtc-market-service/internal/infrastructure/web/middleware"
)

// RouterDeps agrupa los handlers y middlewares que monta el router
type RouterDeps struct {
	Market *handlers.MarketHandler
	Stream *handlers.MarketStream
	Health *handlers.HealthHandler

	Logging   *middleware.LoggingMiddleware
	RateLimit *ratelimit.RateLimitMiddleware
	Auth      *middleware.AuthMiddleware
}

// NewRouter wires every route of the service.
// Middleware order, outermost first: tracing, logging, metrics, rate limit, auth.
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(notFound)

	// Market endpoints
	r.HandleFunc("/tbtc", deps.Market.GetMarket).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/tbtc/last", deps.Market.GetLastSnapshot).Methods(http.MethodGet)
	if deps.Stream != nil {
		r.HandleFunc("/ws/tbtc", deps.Stream.Serve).Methods(http.MethodGet)
	}

	// Health endpoints
	r.HandleFunc("/health", deps.Health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", deps.Health.Ready).Methods(http.MethodGet)

	// Monitoring endpoints
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Documentation endpoints
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)).Methods(http.MethodGet)
	r.HandleFunc("/docs", redirectToSwagger)
	r.HandleFunc("/docs/", redirectToSwagger)

	// Los 404/405 de mux no pasan por r.Use, por eso la cadena envuelve al router entero
	var h http.Handler = r
	if deps.Auth != nil {
		h = deps.Auth.Handler(h)
	}
	if deps.RateLimit != nil {
		h = deps.RateLimit.Handler(h)
	}
	h = metrics.HTTPMetricsMiddleware(h)
	if deps.Logging != nil {
		h = deps.Logging.Handler(h)
	}
	h = middleware.RequestTracingMiddleware(h)

	return h
}

func redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(detail))
}
