package cache

import (
	"context"
	"encoding/json"
	"time"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
)

const (
	DefaultKeyPrefix = "ticker:"
	metaSuffix       = "_meta"
)

// SnapshotMeta is stored next to the records under <prefix>_meta.
type SnapshotMeta struct {
	FetchedAt time.Time `json:"fetched_at"`
	Currency  string    `json:"currency"`
	IDs       []string  `json:"ids"`
}

// SnapshotMirror copia cada snapshot publicado a un interfaces.Cache, una
// clave <prefix><id> por registro. Es solo escritura: nada se lee de vuelta al arrancar.
type SnapshotMirror struct {
	backend  interfaces.Cache
	ttl      time.Duration
	prefix   string
	currency string
	log      logging.CacheLogger
}

func NewSnapshotMirror(backend interfaces.Cache, ttl time.Duration, prefix, currency string) *SnapshotMirror {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SnapshotMirror{
		backend:  backend,
		ttl:      ttl,
		prefix:   prefix,
		currency: currency,
		log:      logging.Cache(),
	}
}

func (m *SnapshotMirror) key(id string) string {
	return m.prefix + id
}

// MetaKey returns the key of the snapshot metadata entry.
func (m *SnapshotMirror) MetaKey() string {
	return m.prefix + metaSuffix
}

// OnSnapshot writes every record and then the metadata. Write errors are
// logged and counted; they never affect the published snapshot.
func (m *SnapshotMirror) OnSnapshot(ctx context.Context, snap *entities.Snapshot) {
	if m.backend == nil || snap == nil {
		return
	}

	for _, rec := range snap.Records() {
		m.write(ctx, m.key(rec.ID), rec)
	}

	fetchedAt, _ := snap.FetchedAt()
	m.write(ctx, m.MetaKey(), SnapshotMeta{
		FetchedAt: fetchedAt.UTC(),
		Currency:  m.currency,
		IDs:       snap.IDs(),
	})
}

func (m *SnapshotMirror) write(ctx context.Context, key string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		metrics.RecordCacheOperation("set", "error")
		m.log.CacheError(ctx, logging.CacheOpSet, key, err)
		return
	}
	if err := m.backend.Set(ctx, key, string(payload), m.ttl); err != nil {
		metrics.RecordCacheOperation("set", "error")
		m.log.CacheError(ctx, logging.CacheOpSet, key, err)
		return
	}
	metrics.RecordCacheOperation("set", "success")
	m.log.Set(ctx, key, m.ttl.Seconds())
}

var _ interfaces.SnapshotListener = (*SnapshotMirror)(nil)
