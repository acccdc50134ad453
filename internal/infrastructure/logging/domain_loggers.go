package logging

import (
	"context"
)

// BaseDomainLogger implementa funcionalidad común para loggers de dominio
type BaseDomainLogger struct {
	Logger
	domain string
}

// Domain retorna el dominio del logger
func (dl *BaseDomainLogger) Domain() string {
	return dl.domain
}

// logWithDomain agrega el campo de dominio a los logs
func (dl *BaseDomainLogger) logWithDomain(ctx context.Context, level LogLevel, message string, fields Fields) {
	if fields == nil {
		fields = make(Fields)
	}
	fields[FieldDomain] = dl.domain

	switch level {
	case LevelDebug:
		dl.Logger.Debug(ctx, message, fields)
	case LevelInfo:
		dl.Logger.Info(ctx, message, fields)
	case LevelWarn:
		dl.Logger.Warn(ctx, message, fields)
	case LevelError:
		dl.Logger.Error(ctx, message, fields)
	}
}

// Override métodos base para incluir dominio
func (dl *BaseDomainLogger) Debug(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelDebug, message, fields)
}

func (dl *BaseDomainLogger) Info(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelInfo, message, fields)
}

func (dl *BaseDomainLogger) Warn(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelWarn, message, fields)
}

func (dl *BaseDomainLogger) Error(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelError, message, fields)
}

func (dl *BaseDomainLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.logWithDomain(ctx, LevelWarn, message, withError(fields, err))
}

func (dl *BaseDomainLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.logWithDomain(ctx, LevelError, message, withError(fields, err))
}

// HTTPDomainLogger especializado para logs HTTP
type HTTPDomainLogger struct {
	*BaseDomainLogger
}

// NewHTTPLogger crea un nuevo logger HTTP
func NewHTTPLogger(baseLogger Logger) HTTPLogger {
	return &HTTPDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "http",
		},
	}
}

func (hl *HTTPDomainLogger) RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, 0).
		WithUserAgent(userAgent).
		WithRemoteIP(remoteIP).
		Build()

	hl.Info(ctx, "HTTP request received", fields)
}

func (hl *HTTPDomainLogger) RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	level := LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = LevelWarn
	} else if statusCode >= 500 {
		level = LevelError
	}

	hl.logWithDomain(ctx, level, "HTTP request completed", fields)
}

// UpstreamDomainLogger especializado para el proceso upstream
type UpstreamDomainLogger struct {
	*BaseDomainLogger
}

// NewUpstreamLogger crea un nuevo logger para el proceso upstream
func NewUpstreamLogger(baseLogger Logger) UpstreamLogger {
	return &UpstreamDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "upstream",
		},
	}
}

func (ul *UpstreamDomainLogger) ProcessStarted(ctx context.Context, command string, pid int) {
	fields := NewFieldBuilder().
		WithCustomField(FieldUpstreamCommand, command).
		WithCustomField(FieldUpstreamPID, pid).
		Build()

	ul.Debug(ctx, "Upstream process started", fields)
}

func (ul *UpstreamDomainLogger) ProcessCompleted(ctx context.Context, command string, exitCode int, duration float64, stdoutBytes int) {
	fields := NewFieldBuilder().
		WithUpstream(command, exitCode, duration).
		WithCustomField(FieldUpstreamStdout, stdoutBytes).
		Build()

	level := LevelInfo
	if exitCode != 0 {
		level = LevelWarn
	}

	ul.logWithDomain(ctx, level, "Upstream process completed", fields)
}

func (ul *UpstreamDomainLogger) ProcessFailed(ctx context.Context, command string, outcome string, stderr string, err error, duration float64) {
	fb := NewFieldBuilder().
		WithCustomField(FieldUpstreamCommand, command).
		WithCustomField(FieldUpstreamOutcome, outcome).
		WithCustomField(FieldUpstreamDuration, duration).
		WithError(err)
	if stderr != "" {
		fb.WithCustomField(FieldUpstreamStderr, stderr)
	}
	fields := fb.Build()

	ul.logWithDomain(ctx, LevelError, "Upstream process failed", fields)
}

// CacheDomainLogger especializado para cache
type CacheDomainLogger struct {
	*BaseDomainLogger
}

// NewCacheLogger crea un nuevo logger de cache
func NewCacheLogger(baseLogger Logger) CacheLogger {
	return &CacheDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "cache",
		},
	}
}

func (cl *CacheDomainLogger) Hit(ctx context.Context, key string, operation string) {
	fields := NewFieldBuilder().
		WithCache(operation, key, true).
		Build()

	cl.Debug(ctx, "Cache hit", fields)
}

func (cl *CacheDomainLogger) Miss(ctx context.Context, key string, operation string) {
	fields := NewFieldBuilder().
		WithCache(operation, key, false).
		Build()

	cl.Debug(ctx, "Cache miss", fields)
}

func (cl *CacheDomainLogger) Set(ctx context.Context, key string, ttl float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheOperation, CacheOpSet).
		WithCustomField(FieldCacheTTL, ttl).
		Build()

	cl.Debug(ctx, "Cache set", fields)
}

func (cl *CacheDomainLogger) Delete(ctx context.Context, key string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheOperation, CacheOpDelete).
		Build()

	cl.Debug(ctx, "Cache delete", fields)
}

func (cl *CacheDomainLogger) CacheError(ctx context.Context, operation, key string, err error) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheOperation, operation).
		WithCustomField(FieldCacheKey, key).
		WithError(err).
		Build()

	cl.ErrorWithError(ctx, "Cache operation failed", err, fields)
}

// SecurityDomainLogger especializado para seguridad
type SecurityDomainLogger struct {
	*BaseDomainLogger
}

// NewSecurityLogger crea un nuevo logger de seguridad
func NewSecurityLogger(baseLogger Logger) SecurityLogger {
	return &SecurityDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "security",
		},
	}
}

func (sl *SecurityDomainLogger) RateLimitExceeded(ctx context.Context, clientIP string, endpoint string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldClientIP, clientIP).
		WithCustomField("endpoint", endpoint).
		WithCustomField(FieldRateLimit, "exceeded").
		Build()

	sl.Warn(ctx, "Rate limit exceeded", fields)
}

func (sl *SecurityDomainLogger) AuthenticationFailed(ctx context.Context, clientIP string, path string, code string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldClientIP, clientIP).
		WithCustomField(FieldPath, path).
		WithCustomField("error_code", code).
		Build()

	sl.Warn(ctx, "API key authentication failed", fields)
}

func (sl *SecurityDomainLogger) SuspiciousActivity(ctx context.Context, clientIP string, activity string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldClientIP, clientIP).
		WithCustomField("activity", activity).
		WithCustomField(FieldSuspiciousReason, activity).
		Build()

	sl.Error(ctx, "Suspicious activity detected", fields)
}
