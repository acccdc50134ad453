package config

import (
	"fmt"
	"strings"
	"time"
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateUpstream(config.Upstream); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}

	// El servidor debe poder escribir el 504 después del timeout upstream y del periodo de gracia del kill
	if config.Server.WriteTimeout <= config.Upstream.Timeout+UpstreamKillGrace {
		return fmt.Errorf("server write_timeout (%v) must be greater than upstream timeout (%v) plus kill grace (%v)",
			config.Server.WriteTimeout, config.Upstream.Timeout, UpstreamKillGrace)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateAuth(config.Auth); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// validateServer valida la configuración del servidor
func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got: %v", config.ReadTimeout)
	}

	if config.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got: %v", config.WriteTimeout)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	return nil
}

// validateUpstream valida la configuración del proceso upstream
func (v *Validator) validateUpstream(config UpstreamConfig) error {
	if strings.TrimSpace(config.Command) == "" {
		return fmt.Errorf("upstream command cannot be empty")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", config.Timeout)
	}

	if config.Timeout > 10*time.Minute {
		return fmt.Errorf("upstream timeout too long: %v, max 10 minutes", config.Timeout)
	}

	for _, kv := range config.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("invalid upstream env entry: %q, expected KEY=VALUE", kv)
		}
	}

	if strings.TrimSpace(config.Label) == "" {
		return fmt.Errorf("upstream label cannot be empty")
	}

	return nil
}

// validateCache valida la configuración del cache
func (v *Validator) validateCache(config CacheConfig) error {
	if !config.Enabled {
		return nil
	}

	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid cache backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if config.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", config.TTL)
	}

	if config.TTL > 24*time.Hour {
		return fmt.Errorf("cache TTL too long: %v, max 24 hours", config.TTL)
	}

	if config.Prefix == "" {
		return fmt.Errorf("cache prefix cannot be empty")
	}

	if strings.EqualFold(config.Backend, "redis") {
		if err := v.validateRedis(config.Redis); err != nil {
			return err
		}
	}

	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	if config.ConnectRetries < 1 || config.ConnectRetries > 10 {
		return fmt.Errorf("redis connect_retries must be between 1-10, got: %d", config.ConnectRetries)
	}

	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Capacity <= 0 {
		return fmt.Errorf("rate_limit capacity must be positive when enabled, got: %d", config.Capacity)
	}

	if config.RefillRate <= 0 {
		return fmt.Errorf("rate_limit refill_rate must be positive when enabled, got: %d", config.RefillRate)
	}

	if config.Capacity > 10000 {
		return fmt.Errorf("rate_limit capacity too high: %d, max 10000", config.Capacity)
	}

	if config.RefillRate > 1000 {
		return fmt.Errorf("rate_limit refill_rate too high: %d, max 1000", config.RefillRate)
	}

	return nil
}

// validateAuth valida la configuración de autenticación
func (v *Validator) validateAuth(config AuthConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.APIKey == "" {
		return fmt.Errorf("api_key cannot be empty when auth is enabled")
	}

	if config.HeaderName == "" {
		return fmt.Errorf("header_name cannot be empty when auth is enabled")
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	return nil
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
