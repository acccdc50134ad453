package logging

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// StructuredLogger implementa la interfaz Logger sobre logrus
type StructuredLogger struct {
	config *LoggerConfig
	logger *logrus.Logger
}

// NewStructuredLogger crea un nuevo logger estructurado
func NewStructuredLogger(config *LoggerConfig) (*StructuredLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	return &StructuredLogger{
		config: config,
		logger: newLogrusLogger(config),
	}, nil
}

func newLogrusLogger(config *LoggerConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(config.Output)
	l.SetFormatter(newFormatter(config.Format))
	l.SetLevel(toLogrusLevel(config.Level))
	return l
}

// log escribe una entrada con los campos base del servicio y los del contexto
func (sl *StructuredLogger) log(ctx context.Context, level LogLevel, message string, fields Fields) {
	lvl := toLogrusLevel(level)
	if !sl.logger.IsLevelEnabled(lvl) {
		return
	}

	sl.entry(ctx, fields).Log(lvl, message)
}

// entry construye la entrada de logrus con toda la información necesaria
func (sl *StructuredLogger) entry(ctx context.Context, fields Fields) *logrus.Entry {
	data := logrus.Fields{
		FieldService: sl.config.Service,
	}
	if sl.config.Version != "" {
		data[FieldVersion] = sl.config.Version
	}
	if sl.config.Environment != "" {
		data["environment"] = sl.config.Environment
	}

	if ctx != nil {
		if requestID := GetRequestID(ctx); requestID != "" {
			data[FieldRequestID] = requestID
		}
		// Agregar duración si hay tiempo de inicio en el contexto
		if startTime := GetStartTime(ctx); !startTime.IsZero() {
			if _, ok := fields[FieldDuration]; !ok {
				data[FieldDuration] = float64(time.Since(startTime).Nanoseconds()) / 1e6
			}
		}
	}

	for k, v := range fields {
		data[k] = v
	}

	if sl.config.AddSource {
		if source := sl.getSource(); source != "" {
			data["source"] = source
		}
	}

	return sl.logger.WithFields(data)
}

// getSource obtiene información del código fuente que llamó al logger
func (sl *StructuredLogger) getSource() string {
	// Skip: getSource, entry, log, public method
	const skip = 4
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}

	return name
}

// Debug logs a debug message
func (sl *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelDebug, message, fields)
}

// Info logs an info message
func (sl *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelInfo, message, fields)
}

// Warn logs a warning message
func (sl *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelWarn, message, fields)
}

// Error logs an error message
func (sl *StructuredLogger) Error(ctx context.Context, message string, fields Fields) {
	sl.log(ctx, LevelError, message, fields)
}

// InfoWithError logs an info message with error details
func (sl *StructuredLogger) InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelInfo, message, withError(fields, err))
}

// WarnWithError logs a warning message with error details
func (sl *StructuredLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelWarn, message, withError(fields, err))
}

// ErrorWithError logs an error message with error details
func (sl *StructuredLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	sl.log(ctx, LevelError, message, withError(fields, err))
}

// withError enriquece los campos con información del error sin mutar el mapa original
func withError(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}

	enriched := make(Fields, len(fields)+2)
	for k, v := range fields {
		enriched[k] = v
	}
	enriched[FieldError] = err.Error()
	enriched[FieldErrorType] = getErrorType(err)
	return enriched
}

// SetLevel establece el nivel de logging
func (sl *StructuredLogger) SetLevel(level LogLevel) {
	sl.config.Level = level
	sl.logger.SetLevel(toLogrusLevel(level))
}

// GetLevel retorna el nivel actual de logging
func (sl *StructuredLogger) GetLevel() LogLevel {
	return sl.config.Level
}
