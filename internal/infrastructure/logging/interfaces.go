package logging

import (
	"context"
	"time"
)

// Logger define la interfaz principal para logging estructurado
type Logger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	InfoWithError(ctx context.Context, message string, err error, fields Fields)
	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DomainLogger representa loggers especializados por dominio
type DomainLogger interface {
	Logger
	Domain() string
}

// HTTPLogger especializado para logs relacionados con HTTP
type HTTPLogger interface {
	DomainLogger

	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64)
}

// ExternalAPILogger especializado para la API de tickers
type ExternalAPILogger interface {
	DomainLogger

	RequestStarted(ctx context.Context, service, endpoint, method string)
	RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, duration float64)
}

// CacheLogger especializado para el backend key/value del mirror
type CacheLogger interface {
	DomainLogger

	Hit(ctx context.Context, key string, operation string)
	Miss(ctx context.Context, key string, operation string)
	Set(ctx context.Context, key string, ttl float64)
	Delete(ctx context.Context, key string)
	CacheError(ctx context.Context, operation, key string, err error)
}

// TickerLogger especializado para el ciclo de refresh y lectura del ticker cache
type TickerLogger interface {
	DomainLogger

	RefreshThrottled(ctx context.Context, lastAttempt time.Time, until time.Time)
	RefreshCompleted(ctx context.Context, records int, duration time.Duration)
	RefreshFailed(ctx context.Context, kind string, err error, staleSince time.Time)
	RecordSkipped(ctx context.Context, reason string)
	AssetServed(ctx context.Context, id string, found bool)
}
