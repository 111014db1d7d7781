package interfaces

import (
	"context"
	"time"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
)

// RefreshOutcome tells the caller what a Refresh call did.
type RefreshOutcome string

const (
	RefreshFetched   RefreshOutcome = "fetched"
	RefreshThrottled RefreshOutcome = "throttled"
	RefreshFailed    RefreshOutcome = "failed"
)

// AssetReader is the consumer-facing read API of the throttled cache.
type AssetReader interface {
	// Refresh performs at most one upstream call per throttle interval.
	Refresh(ctx context.Context) (RefreshOutcome, error)
	// Lookup never triggers a fetch.
	Lookup(id string) (entities.AssetRecord, bool)
	// LastUpdated returns false when no fetch has ever succeeded.
	LastUpdated() (time.Time, bool)
	Snapshot() *entities.Snapshot
	Status() CacheStatus
}

// CacheStatus is a point-in-time description of the cache for diagnostics.
type CacheStatus struct {
	TrackedIDs       []string
	Currency         string
	ThrottleInterval time.Duration
	LastAttempt      time.Time
	LastUpdated      time.Time
	Records          int
	LastFailure      *failures.Event
}

// FailureSink receives a structured event for each failed refresh.
type FailureSink interface {
	ReportFailure(ctx context.Context, event failures.Event)
}

// SnapshotListener is notified after a new snapshot has been published.
// Implementations must not block for long; they run on the refreshing goroutine.
type SnapshotListener interface {
	OnSnapshot(ctx context.Context, snapshot *entities.Snapshot)
}
