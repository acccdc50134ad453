package logging

import (
	"fmt"
	"io"
	"sync"
)

// LoggerFactory facilita la creación de diferentes tipos de loggers
type LoggerFactory struct {
	baseLogger Logger
}

// NewLoggerFactory crea una nueva factory de loggers
func NewLoggerFactory(config *LoggerConfig) (*LoggerFactory, error) {
	if config == nil {
		config = DefaultConfig()
	}

	baseLogger, err := NewStructuredLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create base logger: %w", err)
	}

	return &LoggerFactory{
		baseLogger: baseLogger,
	}, nil
}

// GetHTTPLogger retorna un logger especializado para HTTP
func (f *LoggerFactory) GetHTTPLogger() HTTPLogger {
	return NewHTTPLogger(f.baseLogger)
}

// GetUpstreamLogger retorna un logger especializado para el proceso upstream
func (f *LoggerFactory) GetUpstreamLogger() UpstreamLogger {
	return NewUpstreamLogger(f.baseLogger)
}

// GetCacheLogger retorna un logger especializado para cache
func (f *LoggerFactory) GetCacheLogger() CacheLogger {
	return NewCacheLogger(f.baseLogger)
}

// GetSecurityLogger retorna un logger especializado para seguridad
func (f *LoggerFactory) GetSecurityLogger() SecurityLogger {
	return NewSecurityLogger(f.baseLogger)
}

// LoggerSet contiene todos los loggers especializados
type LoggerSet struct {
	Base     Logger
	HTTP     HTTPLogger
	Upstream UpstreamLogger
	Cache    CacheLogger
	Security SecurityLogger
}

// GetLoggerSet retorna un set completo de loggers especializados
func (f *LoggerFactory) GetLoggerSet() *LoggerSet {
	return &LoggerSet{
		Base:     f.baseLogger,
		HTTP:     f.GetHTTPLogger(),
		Upstream: f.GetUpstreamLogger(),
		Cache:    f.GetCacheLogger(),
		Security: f.GetSecurityLogger(),
	}
}

// Loggers globales para compatibilidad
var (
	globalMu      sync.RWMutex
	globalLoggers *LoggerSet
)

// InitializeGlobalLoggers inicializa los loggers globales
func InitializeGlobalLoggers(config *LoggerConfig) error {
	factory, err := NewLoggerFactory(config)
	if err != nil {
		return fmt.Errorf("failed to initialize global loggers: %w", err)
	}

	globalMu.Lock()
	globalLoggers = factory.GetLoggerSet()
	globalMu.Unlock()
	return nil
}

// InitializeGlobalLoggersWithDefaults inicializa los loggers globales con configuración por defecto
func InitializeGlobalLoggersWithDefaults(service, version, environment string, level LogLevel) error {
	config := NewConfig(service, version, environment).WithLevel(level)
	return InitializeGlobalLoggers(config)
}

// GetGlobalLogger retorna el logger base global
func GetGlobalLogger() Logger {
	return GetGlobalLoggers().Base
}

// GetGlobalLoggers retorna todos los loggers globales
func GetGlobalLoggers() *LoggerSet {
	globalMu.RLock()
	loggers := globalLoggers
	globalMu.RUnlock()

	if loggers == nil {
		// Fallback en caso de que no se hayan inicializado los loggers globales
		_ = InitializeGlobalLoggersWithDefaults("tbtc-market-service", "1.0.0", "development", LevelInfo)
		globalMu.RLock()
		loggers = globalLoggers
		globalMu.RUnlock()
	}
	return loggers
}

// Funciones de conveniencia para crear configuraciones comunes

// NewTestingConfig crea una configuración para tests que escribe en el writer dado
func NewTestingConfig(service string, output io.Writer) *LoggerConfig {
	return NewConfig(service, "test", "testing").
		WithLevel(LevelDebug).
		WithFormat(FormatJSON).
		WithOutput(output)
}
