package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/ratelimit"
)

// Códigos de fallo reportados en los logs de seguridad
const (
	AuthCodeMissing = "API_KEY_MISSING"
	AuthCodeInvalid = "API_KEY_INVALID"
)

// AuthMiddleware provides optional API key authentication
type AuthMiddleware struct {
	config config.AuthConfig
	logger logging.SecurityLogger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(cfg config.AuthConfig, logger logging.SecurityLogger) *AuthMiddleware {
	if logger == nil {
		logger = logging.Security()
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-API-Key"
	}
	return &AuthMiddleware{
		config: cfg,
		logger: logger,
	}
}

// Handler wraps the given handler with API key authentication
func (am *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !am.config.Enabled || am.isUnauthenticatedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(am.config.HeaderName)
		if apiKey == "" {
			am.respondWithAuthError(w, r, "API key missing", AuthCodeMissing)
			return
		}

		if !am.isValidAPIKey(apiKey) {
			am.respondWithAuthError(w, r, "Invalid API key", AuthCodeInvalid)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isUnauthenticatedPath acepta rutas exactas y prefijos terminados en "/"
func (am *AuthMiddleware) isUnauthenticatedPath(path string) bool {
	for _, unauthPath := range am.config.UnauthPaths {
		if path == unauthPath {
			return true
		}
		if strings.HasSuffix(unauthPath, "/") && strings.HasPrefix(path, unauthPath) {
			return true
		}
	}
	return false
}

func (am *AuthMiddleware) isValidAPIKey(providedKey string) bool {
	return subtle.ConstantTimeCompare([]byte(providedKey), []byte(am.config.APIKey)) == 1
}

// respondWithAuthError envía un 401 con el mismo formato de error que el resto del servicio
func (am *AuthMiddleware) respondWithAuthError(w http.ResponseWriter, r *http.Request, message, code string) {
	am.logger.AuthenticationFailed(r.Context(), ratelimit.GetClientID(r), r.URL.Path, code)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `ApiKey header="`+am.config.HeaderName+`"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"detail":"` + message + `"}`))
}
