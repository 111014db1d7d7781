package entities

import (
	"sort"
	"time"
)

// Snapshot is the full set of records published by one successful fetch.
// It is never mutated after construction; a refresh replaces it as a whole.
type Snapshot struct {
	records   map[string]AssetRecord
	fetchedAt time.Time
}

// NewSnapshot builds a snapshot that owns records. The caller must not keep
// a reference to the map.
func NewSnapshot(records map[string]AssetRecord, fetchedAt time.Time) *Snapshot {
	if records == nil {
		records = make(map[string]AssetRecord)
	}
	return &Snapshot{records: records, fetchedAt: fetchedAt}
}

// EmptySnapshot is the "never fetched" state.
func EmptySnapshot() *Snapshot {
	return &Snapshot{records: make(map[string]AssetRecord)}
}

// Get returns a copy of the record stored under id.
func (s *Snapshot) Get(id string) (AssetRecord, bool) {
	rec, ok := s.records[id]
	if !ok {
		return AssetRecord{}, false
	}
	return rec.Clone(), true
}

// FetchedAt reports when the snapshot was fetched; false means never.
func (s *Snapshot) FetchedAt() (time.Time, bool) {
	return s.fetchedAt, !s.fetchedAt.IsZero()
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// IDs returns the record ids in sorted order.
func (s *Snapshot) IDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Records returns copies of all records sorted by id.
func (s *Snapshot) Records() []AssetRecord {
	out := make([]AssetRecord, 0, len(s.records))
	for _, id := range s.IDs() {
		out = append(out, s.records[id].Clone())
	}
	return out
}
