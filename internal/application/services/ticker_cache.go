package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"ticker-cache-service/internal/application/normalizer"
	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
)

const (
	DefaultCurrency         = "usd"
	DefaultThrottleInterval = 60 * time.Minute

	refreshKey = "refresh"
)

var (
	ErrNoSource        = errors.New("ticker source is required")
	ErrNoTrackedIDs    = errors.New("at least one tracked id is required")
	ErrInvalidThrottle = errors.New("throttle interval must be positive")
)

// ThrottledCache serves the last successful ticker snapshot and calls the
// upstream at most once per throttle interval.
//
// Refresh callers are funnelled through a singleflight group so only one
// attempt runs at a time; inside it the throttle check and the lastAttempt
// update happen under mu as one step. Readers only load the snapshot pointer.
type ThrottledCache struct {
	source     interfaces.TickerSource
	normalizer *normalizer.Normalizer
	fold       entities.CaseFold
	ids        []string
	currency   string
	throttle   time.Duration

	now       func() time.Time
	sink      interfaces.FailureSink
	listeners []interfaces.SnapshotListener
	log       logging.TickerLogger

	group singleflight.Group

	mu          sync.Mutex
	lastAttempt time.Time
	lastFailure *failures.Event

	snapshot atomic.Pointer[entities.Snapshot]
}

// CacheOption configures optional collaborators of a ThrottledCache.
type CacheOption func(*ThrottledCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ThrottledCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithFailureSink sets where failed refreshes are reported.
func WithFailureSink(sink interfaces.FailureSink) CacheOption {
	return func(c *ThrottledCache) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithSnapshotListener adds a listener notified after each published snapshot.
func WithSnapshotListener(l interfaces.SnapshotListener) CacheOption {
	return func(c *ThrottledCache) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

// WithTickerLogger overrides the global ticker logger.
func WithTickerLogger(l logging.TickerLogger) CacheOption {
	return func(c *ThrottledCache) {
		if l != nil {
			c.log = l
		}
	}
}

// NewThrottledCache canonicalizes ids and currency with the shape's case
// folding and starts in the "never fetched" state.
func NewThrottledCache(source interfaces.TickerSource, norm *normalizer.Normalizer, ids []string, currency string, throttle time.Duration, opts ...CacheOption) (*ThrottledCache, error) {
	if source == nil {
		return nil, ErrNoSource
	}
	if norm == nil {
		norm = normalizer.New(normalizer.TickerShape())
	}
	if throttle <= 0 {
		return nil, ErrInvalidThrottle
	}

	fold := norm.Shape().Fold
	seen := make(map[string]bool, len(ids))
	tracked := make([]string, 0, len(ids))
	for _, id := range ids {
		id = fold.Canonicalize(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		tracked = append(tracked, id)
	}
	if len(tracked) == 0 {
		return nil, ErrNoTrackedIDs
	}

	if currency == "" {
		currency = DefaultCurrency
	}

	c := &ThrottledCache{
		source:     source,
		normalizer: norm,
		fold:       fold,
		ids:        tracked,
		currency:   fold.Canonicalize(currency),
		throttle:   throttle,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.Ticker()
	}
	if c.sink == nil {
		c.sink = NewLoggingFailureSink(c.log)
	}
	c.snapshot.Store(entities.EmptySnapshot())
	return c, nil
}

// Refresh fetches a new snapshot unless the previous attempt started less than
// one throttle interval ago. Callers arriving while an attempt is in flight
// wait for it and share its outcome. On failure the previous snapshot stays
// published and the error is returned after being reported to the sink.
func (c *ThrottledCache) Refresh(ctx context.Context) (interfaces.RefreshOutcome, error) {
	v, err, _ := c.group.Do(refreshKey, func() (interface{}, error) {
		startedAt, ok := c.begin(ctx)
		if !ok {
			metrics.RecordRefresh(string(interfaces.RefreshThrottled))
			return interfaces.RefreshThrottled, nil
		}
		// the attempt is shared, so one caller going away must not abort it;
		// the source's own timeout bounds it
		outcome, err := c.fetch(context.WithoutCancel(ctx), startedAt)
		// una vez por intento, no por cada caller que comparte el resultado
		metrics.RecordRefresh(string(outcome))
		return outcome, err
	})

	outcome, _ := v.(interfaces.RefreshOutcome)
	if outcome == "" {
		outcome = interfaces.RefreshFailed
	}
	return outcome, err
}

// begin is the atomic check-and-set around lastAttempt.
func (c *ThrottledCache) begin(ctx context.Context) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastAttempt.IsZero() && now.Sub(c.lastAttempt) < c.throttle {
		c.log.RefreshThrottled(ctx, c.lastAttempt, c.lastAttempt.Add(c.throttle))
		return now, false
	}
	c.lastAttempt = now
	return now, true
}

func (c *ThrottledCache) fetch(ctx context.Context, startedAt time.Time) (interfaces.RefreshOutcome, error) {
	req := interfaces.TickerRequest{
		IDs:       append([]string(nil), c.ids...),
		Currency:  c.currency,
		Intervals: c.normalizer.Shape().Intervals(),
	}

	raws, err := c.source.FetchTickers(ctx, req)
	duration := c.now().Sub(startedAt)
	metrics.RefreshDuration.Observe(duration.Seconds())
	if err != nil {
		c.fail(ctx, err, startedAt, duration)
		return interfaces.RefreshFailed, fmt.Errorf("refresh ticker snapshot: %w", err)
	}

	records := make(map[string]entities.AssetRecord, len(raws))
	for _, raw := range raws {
		rec := c.normalizer.Normalize(raw)
		rec.ID = c.fold.Canonicalize(rec.ID)
		if rec.ID == "" {
			c.log.RecordSkipped(ctx, "record without a usable id")
			continue
		}
		records[rec.ID] = rec
	}

	snap := entities.NewSnapshot(records, startedAt)
	c.snapshot.Store(snap)

	c.mu.Lock()
	c.lastFailure = nil
	c.mu.Unlock()

	metrics.UpdateSnapshot(snap.Len(), float64(startedAt.Unix()))
	for id, rec := range records {
		if rec.CurrentPrice.Valid {
			metrics.UpdateAssetPrice(id, c.currency, rec.CurrentPrice.Decimal.InexactFloat64())
		}
	}
	c.log.RefreshCompleted(ctx, snap.Len(), duration)

	for _, l := range c.listeners {
		l.OnSnapshot(ctx, snap)
	}
	return interfaces.RefreshFetched, nil
}

func (c *ThrottledCache) fail(ctx context.Context, err error, startedAt time.Time, duration time.Duration) {
	event := failures.Event{
		Kind:        failures.Classify(err),
		Err:         err,
		AttemptedAt: startedAt,
		Duration:    duration,
		IDs:         append([]string(nil), c.ids...),
		Currency:    c.currency,
	}
	if fetchedAt, ok := c.snapshot.Load().FetchedAt(); ok {
		event.StaleSince = fetchedAt
	}

	c.mu.Lock()
	c.lastFailure = &event
	c.mu.Unlock()

	c.sink.ReportFailure(ctx, event)
}

// Lookup returns a copy of the record for id from the current snapshot.
func (c *ThrottledCache) Lookup(id string) (entities.AssetRecord, bool) {
	rec, ok := c.snapshot.Load().Get(c.fold.Canonicalize(id))
	metrics.RecordLookup(ok)
	return rec, ok
}

// LastUpdated returns the fetch time of the current snapshot; false means never.
func (c *ThrottledCache) LastUpdated() (time.Time, bool) {
	return c.snapshot.Load().FetchedAt()
}

// Snapshot returns the currently published snapshot.
func (c *ThrottledCache) Snapshot() *entities.Snapshot {
	return c.snapshot.Load()
}

// TrackedIDs returns the canonical ids in configuration order.
func (c *ThrottledCache) TrackedIDs() []string {
	return append([]string(nil), c.ids...)
}

// Currency returns the canonical target currency.
func (c *ThrottledCache) Currency() string {
	return c.currency
}

// Canonicalize folds an id the same way tracked ids were folded.
func (c *ThrottledCache) Canonicalize(id string) string {
	return c.fold.Canonicalize(id)
}

func (c *ThrottledCache) Status() interfaces.CacheStatus {
	snap := c.snapshot.Load()
	fetchedAt, _ := snap.FetchedAt()

	c.mu.Lock()
	defer c.mu.Unlock()

	st := interfaces.CacheStatus{
		TrackedIDs:       append([]string(nil), c.ids...),
		Currency:         c.currency,
		ThrottleInterval: c.throttle,
		LastAttempt:      c.lastAttempt,
		LastUpdated:      fetchedAt,
		Records:          snap.Len(),
	}
	if c.lastFailure != nil {
		ev := *c.lastFailure
		st.LastFailure = &ev
	}
	return st
}

var _ interfaces.AssetReader = (*ThrottledCache)(nil)
