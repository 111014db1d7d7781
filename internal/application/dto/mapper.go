package dto

import (
	"errors"
	"time"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
)

// Lookup is the per-asset view a handler hands to the mapper
type Lookup struct {
	ID          string
	Record      entities.AssetRecord
	Found       bool
	Available   bool
	LastUpdated time.Time
}

// AssetMapper maneja la conversión entre entidades del dominio y DTOs
type AssetMapper struct{}

// NewAssetMapper crea una nueva instancia del mapper
func NewAssetMapper() *AssetMapper {
	return &AssetMapper{}
}

// ToAssetResponse convierte un lookup encontrado a DTO
func (m *AssetMapper) ToAssetResponse(l Lookup) AssetResponse {
	return AssetResponse{
		AssetRecord: l.Record,
		Available:   l.Available,
		LastUpdated: timePtr(l.LastUpdated),
	}
}

// ToAssetsResponse keeps the request order; ids not found go to Missing
func (m *AssetMapper) ToAssetsResponse(currency string, lastUpdated time.Time, lookups []Lookup) *AssetsResponse {
	resp := &AssetsResponse{
		Currency:    currency,
		LastUpdated: timePtr(lastUpdated),
		Assets:      []AssetResponse{},
	}
	for _, l := range lookups {
		if !l.Found {
			resp.Missing = append(resp.Missing, l.ID)
			continue
		}
		resp.Assets = append(resp.Assets, m.ToAssetResponse(l))
	}
	return resp
}

// ToRefreshResponse describes a Refresh call; next is only set when throttled or failed
func (m *AssetMapper) ToRefreshResponse(outcome interfaces.RefreshOutcome, err error, status interfaces.CacheStatus) *RefreshResponse {
	resp := &RefreshResponse{
		Outcome:     string(outcome),
		LastUpdated: timePtr(status.LastUpdated),
	}
	if outcome != interfaces.RefreshFetched && !status.LastAttempt.IsZero() {
		resp.NextEligibleRefresh = timePtr(status.LastAttempt.Add(status.ThrottleInterval))
	}
	if err != nil {
		resp.Error = rootMessage(err)
		resp.FailureKind = string(failures.Classify(err))
	}
	return resp
}

// ToStatusResponse convierte el estado del cache a DTO
func (m *AssetMapper) ToStatusResponse(status interfaces.CacheStatus) *StatusResponse {
	resp := &StatusResponse{
		TrackedIDs:       status.TrackedIDs,
		Currency:         status.Currency,
		ThrottleInterval: status.ThrottleInterval.String(),
		LastAttempt:      timePtr(status.LastAttempt),
		LastUpdated:      timePtr(status.LastUpdated),
		Records:          status.Records,
	}
	if !status.LastAttempt.IsZero() {
		resp.NextEligibleRefresh = timePtr(status.LastAttempt.Add(status.ThrottleInterval))
	}
	if f := status.LastFailure; f != nil {
		resp.LastFailure = &FailureResponse{
			Kind:        string(f.Kind),
			Error:       rootMessage(f.Err),
			AttemptedAt: f.AttemptedAt,
			DurationMs:  f.Duration.Milliseconds(),
			StaleSince:  timePtr(f.StaleSince),
		}
	}
	return resp
}

// ToStreamMessage convierte un snapshot publicado al mensaje del websocket
func (m *AssetMapper) ToStreamMessage(currency string, snap *entities.Snapshot) StreamMessage {
	fetchedAt, _ := snap.FetchedAt()
	return StreamMessage{
		Type:      "snapshot",
		Currency:  currency,
		FetchedAt: fetchedAt,
		Assets:    snap.Records(),
	}
}

// rootMessage hides wrapping prefixes and upstream bodies from API clients
func rootMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, sentinel := range []error{failures.ErrTransport, failures.ErrUpstreamStatus, failures.ErrMalformedPayload} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
