package logging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implementa Logger sobre un *logrus.Logger
type LogrusLogger struct {
	mu     sync.RWMutex
	config *LoggerConfig
	logger *logrus.Logger
}

// NewLogrusLogger crea un logger estructurado respaldado por logrus
func NewLogrusLogger(config *LoggerConfig) (*LogrusLogger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := logrus.New()
	l.SetOutput(config.Output)
	l.SetLevel(logrusLevels[config.Level])
	l.SetReportCaller(config.AddSource)

	switch config.Format {
	case FormatText:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	}

	return &LogrusLogger{config: config, logger: l}, nil
}

// entry arma la entrada con los campos base, el request id y la duración del request
func (ll *LogrusLogger) entry(ctx context.Context, fields Fields) *logrus.Entry {
	data := logrus.Fields{
		FieldService: ll.config.Service,
	}
	if ll.config.Version != "" {
		data[FieldVersion] = ll.config.Version
	}
	if ll.config.Environment != "" {
		data[FieldEnv] = ll.config.Environment
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		data[FieldRequestID] = requestID
	}
	if startTime := GetStartTime(ctx); !startTime.IsZero() {
		data[FieldDuration] = durationMs(time.Since(startTime))
	}
	for k, v := range fields {
		data[k] = v
	}
	return ll.logger.WithFields(data)
}

func (ll *LogrusLogger) Debug(ctx context.Context, message string, fields Fields) {
	ll.entry(ctx, fields).Debug(message)
}

func (ll *LogrusLogger) Info(ctx context.Context, message string, fields Fields) {
	ll.entry(ctx, fields).Info(message)
}

func (ll *LogrusLogger) Warn(ctx context.Context, message string, fields Fields) {
	ll.entry(ctx, fields).Warn(message)
}

func (ll *LogrusLogger) Error(ctx context.Context, message string, fields Fields) {
	ll.entry(ctx, fields).Error(message)
}

func (ll *LogrusLogger) InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	ll.Info(ctx, message, withError(fields, err))
}

func (ll *LogrusLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	ll.Warn(ctx, message, withError(fields, err))
}

func (ll *LogrusLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	ll.Error(ctx, message, withError(fields, err))
}

// SetLevel establece el nivel de logging
func (ll *LogrusLogger) SetLevel(level LogLevel) {
	lvl, ok := logrusLevels[level]
	if !ok {
		return
	}
	ll.mu.Lock()
	ll.config.Level = level
	ll.mu.Unlock()
	ll.logger.SetLevel(lvl)
}

// GetLevel retorna el nivel actual de logging
func (ll *LogrusLogger) GetLevel() LogLevel {
	ll.mu.RLock()
	defer ll.mu.RUnlock()
	return ll.config.Level
}

// withError copia los campos y agrega el error; no modifica el mapa del caller
func withError(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldError] = err.Error()
	out[FieldErrorType] = getErrorType(err)
	return out
}
