package logging

import (
	"context"
	"time"
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

func (dl *BaseDomainLogger) tag(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldDomain] = dl.domain
	return out
}

// logWithDomain agrega el campo de dominio a los logs
func (dl *BaseDomainLogger) logWithDomain(ctx context.Context, level LogLevel, message string, fields Fields) {
	fields = dl.tag(fields)
	switch level {
	case LevelDebug:
		dl.Logger.Debug(ctx, message, fields)
	case LevelWarn:
		dl.Logger.Warn(ctx, message, fields)
	case LevelError:
		dl.Logger.Error(ctx, message, fields)
	default:
		dl.Logger.Info(ctx, message, fields)
	}
}

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

func (dl *BaseDomainLogger) InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.InfoWithError(ctx, message, err, dl.tag(fields))
}

func (dl *BaseDomainLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.WarnWithError(ctx, message, err, dl.tag(fields))
}

func (dl *BaseDomainLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.Logger.ErrorWithError(ctx, message, err, dl.tag(fields))
}

// levelForStatus elige el nivel según el código HTTP
func levelForStatus(statusCode int) LogLevel {
	switch {
	case statusCode >= 500:
		return LevelError
	case statusCode >= 400:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// HTTPDomainLogger especializado para logs HTTP
type HTTPDomainLogger struct {
	*BaseDomainLogger
}

func NewHTTPLogger(baseLogger Logger) HTTPLogger {
	return &HTTPDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "http"},
	}
}

func (hl *HTTPDomainLogger) RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, 0).
		WithCustomField(FieldHTTPUserAgent, userAgent).
		WithCustomField(FieldHTTPRemoteIP, remoteIP).
		Build()

	hl.Debug(ctx, "HTTP request received", fields)
}

func (hl *HTTPDomainLogger) RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	hl.logWithDomain(ctx, levelForStatus(statusCode), "HTTP request completed", fields)
}

func (hl *HTTPDomainLogger) RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	hl.ErrorWithError(ctx, "HTTP request failed", err, fields)
}

// ExternalAPIDomainLogger especializado para la API de tickers
type ExternalAPIDomainLogger struct {
	*BaseDomainLogger
}

func NewExternalAPILogger(baseLogger Logger) ExternalAPILogger {
	return &ExternalAPIDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "external_api"},
	}
}

func (el *ExternalAPIDomainLogger) RequestStarted(ctx context.Context, service, endpoint, method string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldExternalService, service).
		WithCustomField(FieldExternalEndpoint, endpoint).
		WithCustomField(FieldExternalMethod, method).
		Build()

	el.Debug(ctx, "External API request started", fields)
}

func (el *ExternalAPIDomainLogger) RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, duration float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldExternalService, service).
		WithCustomField(FieldExternalEndpoint, endpoint).
		WithCustomField(FieldExternalStatus, statusCode).
		WithCustomField(FieldExternalDuration, duration).
		Build()

	el.logWithDomain(ctx, levelForStatus(statusCode), "External API request completed", fields)
}

func (el *ExternalAPIDomainLogger) RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, duration float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldExternalService, service).
		WithCustomField(FieldExternalEndpoint, endpoint).
		WithCustomField(FieldExternalStatus, statusCode).
		WithCustomField(FieldExternalDuration, duration).
		Build()

	el.ErrorWithError(ctx, "External API request failed", err, fields)
}

// CacheDomainLogger especializado para el backend del mirror
type CacheDomainLogger struct {
	*BaseDomainLogger
}

func NewCacheLogger(baseLogger Logger) CacheLogger {
	return &CacheDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "cache"},
	}
}

func (cl *CacheDomainLogger) Hit(ctx context.Context, key string, operation string) {
	cl.Debug(ctx, "Cache hit", NewFieldBuilder().WithCache(operation, key, true).Build())
}

func (cl *CacheDomainLogger) Miss(ctx context.Context, key string, operation string) {
	cl.Debug(ctx, "Cache miss", NewFieldBuilder().WithCache(operation, key, false).Build())
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
		Build()

	cl.ErrorWithError(ctx, "Cache operation failed", err, fields)
}

// TickerDomainLogger cubre refresh, throttling y lecturas del ticker cache
type TickerDomainLogger struct {
	*BaseDomainLogger
}

func NewTickerLogger(baseLogger Logger) TickerLogger {
	return &TickerDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{Logger: baseLogger, domain: "ticker"},
	}
}

func (tl *TickerDomainLogger) RefreshThrottled(ctx context.Context, lastAttempt time.Time, until time.Time) {
	fields := NewFieldBuilder().
		WithCustomField(FieldOutcome, "throttled").
		WithCustomField(FieldLastAttempt, lastAttempt.UTC().Format(time.RFC3339)).
		WithCustomField(FieldThrottleUntil, until.UTC().Format(time.RFC3339)).
		Build()

	tl.Debug(ctx, "Refresh skipped inside throttle window", fields)
}

func (tl *TickerDomainLogger) RefreshCompleted(ctx context.Context, records int, duration time.Duration) {
	fields := NewFieldBuilder().
		WithCustomField(FieldOutcome, "fetched").
		WithCustomField(FieldRecords, records).
		WithDuration(duration).
		Build()

	tl.Info(ctx, "Snapshot refreshed", fields)
}

func (tl *TickerDomainLogger) RefreshFailed(ctx context.Context, kind string, err error, staleSince time.Time) {
	b := NewFieldBuilder().
		WithCustomField(FieldOutcome, "failed").
		WithCustomField(FieldFailureKind, kind)
	if !staleSince.IsZero() {
		b.WithCustomField(FieldStaleSince, staleSince.UTC().Format(time.RFC3339))
	}

	tl.WarnWithError(ctx, "Refresh failed, serving previous snapshot", err, b.Build())
}

func (tl *TickerDomainLogger) RecordSkipped(ctx context.Context, reason string) {
	tl.Warn(ctx, "Upstream record skipped", Fields{"reason": reason})
}

func (tl *TickerDomainLogger) AssetServed(ctx context.Context, id string, found bool) {
	fields := NewFieldBuilder().
		WithCustomField(FieldAssetID, id).
		WithCustomField("found", found).
		Build()

	tl.Debug(ctx, "Asset lookup", fields)
}
