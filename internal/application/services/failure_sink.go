package services

import (
	"context"

	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
)

// LoggingFailureSink reports failed refreshes to the ticker logger and to Prometheus.
type LoggingFailureSink struct {
	log logging.TickerLogger
}

func NewLoggingFailureSink(log logging.TickerLogger) *LoggingFailureSink {
	if log == nil {
		log = logging.Ticker()
	}
	return &LoggingFailureSink{log: log}
}

func (s *LoggingFailureSink) ReportFailure(ctx context.Context, event failures.Event) {
	metrics.RecordRefreshFailure(string(event.Kind))
	s.log.RefreshFailed(ctx, string(event.Kind), event.Err, event.StaleSince)
}

var _ interfaces.FailureSink = (*LoggingFailureSink)(nil)
