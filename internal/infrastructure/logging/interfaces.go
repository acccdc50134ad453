package logging

import (
	"context"
)

// Logger define la interfaz principal para logging estructurado
type Logger interface {
	// Métodos básicos de logging por nivel
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	// Métodos con error incluido
	InfoWithError(ctx context.Context, message string, err error, fields Fields)
	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	// Configuración
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DomainLogger representa loggers especializados por dominio
type DomainLogger interface {
	Logger

	// Identificador del dominio
	Domain() string
}

// HTTPLogger especializado para logs relacionados con HTTP
type HTTPLogger interface {
	DomainLogger

	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64)
}

// UpstreamLogger especializado para las invocaciones del proceso upstream
type UpstreamLogger interface {
	DomainLogger

	ProcessStarted(ctx context.Context, command string, pid int)
	ProcessCompleted(ctx context.Context, command string, exitCode int, duration float64, stdoutBytes int)
	ProcessFailed(ctx context.Context, command string, outcome string, stderr string, err error, duration float64)
}

// CacheLogger especializado para logs relacionados con cache
type CacheLogger interface {
	DomainLogger

	Hit(ctx context.Context, key string, operation string)
	Miss(ctx context.Context, key string, operation string)
	Set(ctx context.Context, key string, ttl float64)
	Delete(ctx context.Context, key string)
	CacheError(ctx context.Context, operation, key string, err error)
}

// SecurityLogger especializado para logs relacionados con seguridad
type SecurityLogger interface {
	DomainLogger

	RateLimitExceeded(ctx context.Context, clientIP string, endpoint string)
	AuthenticationFailed(ctx context.Context, clientIP string, path string, code string)
	SuspiciousActivity(ctx context.Context, clientIP string, activity string)
}
