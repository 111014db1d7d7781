package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
)

const DefaultPollInterval = time.Minute

// AssetView is what one consumer shows for a tracked asset after a poll.
type AssetView struct {
	ID          string
	Currency    string
	Record      entities.AssetRecord
	Found       bool
	Available   bool
	LastUpdated time.Time
	Age         time.Duration
}

// AvailabilityPolicy decides when a consumer stops presenting cached data as available.
// A zero StaleAfter only requires the asset to be present in some snapshot.
type AvailabilityPolicy struct {
	StaleAfter time.Duration
	Now        func() time.Time
}

// View builds the consumer view of id from the reader's current snapshot.
func (p AvailabilityPolicy) View(reader interfaces.AssetReader, id, currency string) AssetView {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	v := AssetView{ID: id, Currency: currency}
	v.Record, v.Found = reader.Lookup(id)
	updated, ok := reader.LastUpdated()
	if !ok {
		return v
	}
	v.LastUpdated = updated
	v.Age = now().Sub(updated)
	v.Available = v.Found && (p.StaleAfter <= 0 || v.Age <= p.StaleAfter)
	return v
}

// Poller drives the cache on a fixed cadence, one consumer per tracked asset,
// the way independent sensors would each refresh and then read.
type Poller struct {
	cache    *ThrottledCache
	interval time.Duration
	policy   AvailabilityPolicy

	mu    sync.RWMutex
	views map[string]AssetView
}

func NewPoller(cache *ThrottledCache, interval time.Duration, policy AvailabilityPolicy) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		cache:    cache,
		interval: interval,
		policy:   policy,
		views:    make(map[string]AssetView),
	}
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) error {
	logging.Info(ctx, "Starting background ticker poller", logging.NewFieldBuilder().
		WithTracker(p.cache.TrackedIDs(), p.cache.Currency()).
		WithCustomField("interval", p.interval.String()).
		WithCustomField("stale_after", p.policy.StaleAfter.String()).
		Build())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			logging.Info(ctx, "Ticker poller stopped", nil)
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce runs one cycle: every tracked asset refreshes concurrently and
// then reads its own record.
func (p *Poller) PollOnce(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	currency := p.cache.Currency()

	for _, id := range p.cache.TrackedIDs() {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// failures are already reported by the cache; the view falls back to the last snapshot
			_, _ = p.cache.Refresh(gctx)

			view := p.policy.View(p.cache, id, currency)
			p.store(view)
			metrics.UpdateAssetAvailability(id, view.Available)
			if !view.LastUpdated.IsZero() {
				metrics.UpdateSnapshotAge(view.Age.Seconds())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func (p *Poller) store(v AssetView) {
	p.mu.Lock()
	p.views[v.ID] = v
	p.mu.Unlock()
}

// View returns the last view of id computed by the poller.
func (p *Poller) View(id string) (AssetView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.views[p.cache.Canonicalize(id)]
	return v, ok
}

// Views returns the last views in tracked-id order.
func (p *Poller) Views() []AssetView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]AssetView, 0, len(p.views))
	for _, id := range p.cache.TrackedIDs() {
		if v, ok := p.views[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
