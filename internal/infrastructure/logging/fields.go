package logging

import (
	"context"
	"fmt"
	"time"
)

// Fields representa campos estructurados para logs
type Fields map[string]interface{}

// LogLevel representa los diferentes niveles de log
type LogLevel string

// Niveles de log disponibles
const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Campos estándar para logs
const (
	FieldTimestamp  = "timestamp"
	FieldLevel      = "level"
	FieldMessage    = "message"
	FieldRequestID  = "request_id"
	FieldService    = "service"
	FieldVersion    = "version"
	FieldDomain     = "domain"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldDuration   = "duration_ms"
	FieldStatusCode = "status_code"
	FieldUserAgent  = "user_agent"
	FieldRemoteIP   = "remote_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldHeaders    = "headers"
)

// Campos para contexto de requests
const (
	FieldHTTPMethod     = "http_method"
	FieldHTTPPath       = "http_path"
	FieldHTTPStatusCode = "http_status_code"
	FieldHTTPUserAgent  = "http_user_agent"
	FieldHTTPRemoteIP   = "http_remote_ip"
	FieldHTTPHeaders    = "http_headers"
	FieldHTTPQuery      = "http_query"
)

// Campos para el proceso upstream
const (
	FieldUpstreamCommand  = "upstream_command"
	FieldUpstreamExitCode = "upstream_exit_code"
	FieldUpstreamDuration = "upstream_duration_ms"
	FieldUpstreamOutcome  = "upstream_outcome"
	FieldUpstreamStdout   = "upstream_stdout_bytes"
	FieldUpstreamStderr   = "upstream_stderr"
	FieldUpstreamPID      = "upstream_pid"
)

// Campos para cache
const (
	FieldCacheOperation = "cache_operation"
	FieldCacheKey       = "cache_key"
	FieldCacheHit       = "cache_hit"
	FieldCacheTTL       = "cache_ttl_seconds"
)

// Campos para websocket
const (
	FieldSessionID = "session_id"
	FieldMessages  = "messages"
)

// Campos para seguridad
const (
	FieldClientIP         = "client_ip"
	FieldSuspiciousReason = "suspicious_reason"
	FieldRateLimit        = "rate_limit"
)

// Operaciones de cache
const (
	CacheOpGet    = "GET"
	CacheOpSet    = "SET"
	CacheOpDelete = "DELETE"
	CacheOpClear  = "CLEAR"
)

// FieldBuilder ayuda a construir campos de manera estandarizada
type FieldBuilder struct {
	fields Fields
}

// NewFieldBuilder crea un nuevo builder de campos
func NewFieldBuilder() *FieldBuilder {
	return &FieldBuilder{
		fields: make(Fields),
	}
}

// WithError añade información del error
func (fb *FieldBuilder) WithError(err error) *FieldBuilder {
	if err != nil {
		fb.fields[FieldError] = err.Error()
		fb.fields[FieldErrorType] = getErrorType(err)
	}
	return fb
}

// WithHTTPInfo añade información HTTP básica
func (fb *FieldBuilder) WithHTTPInfo(method, path string, statusCode int) *FieldBuilder {
	fb.fields[FieldHTTPMethod] = method
	fb.fields[FieldHTTPPath] = path
	fb.fields[FieldHTTPStatusCode] = statusCode
	return fb
}

// WithUserAgent añade user agent
func (fb *FieldBuilder) WithUserAgent(userAgent string) *FieldBuilder {
	if userAgent != "" {
		fb.fields[FieldHTTPUserAgent] = userAgent
	}
	return fb
}

// WithRemoteIP añade IP remota
func (fb *FieldBuilder) WithRemoteIP(ip string) *FieldBuilder {
	if ip != "" {
		fb.fields[FieldHTTPRemoteIP] = ip
	}
	return fb
}

// WithUpstream añade información de la invocación upstream; durationMs en milisegundos
func (fb *FieldBuilder) WithUpstream(command string, exitCode int, durationMs float64) *FieldBuilder {
	fb.fields[FieldUpstreamCommand] = command
	fb.fields[FieldUpstreamExitCode] = exitCode
	fb.fields[FieldUpstreamDuration] = durationMs
	return fb
}

// WithCache añade información de cache
func (fb *FieldBuilder) WithCache(operation, key string, hit bool) *FieldBuilder {
	fb.fields[FieldCacheOperation] = operation
	fb.fields[FieldCacheKey] = key
	fb.fields[FieldCacheHit] = hit
	return fb
}

// WithCustomField añade un campo personalizado
func (fb *FieldBuilder) WithCustomField(key string, value interface{}) *FieldBuilder {
	if key != "" && value != nil {
		fb.fields[key] = value
	}
	return fb
}

// Build retorna los campos construidos
func (fb *FieldBuilder) Build() Fields {
	if len(fb.fields) == 0 {
		return nil
	}
	return fb.fields
}

// Context keys para información del request
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	StartTimeKey contextKey = "start_time"
)

// Funciones de utilidad para contexto
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, StartTimeKey, startTime)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// getErrorType extrae el tipo de error para logging
func getErrorType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", err)
}
