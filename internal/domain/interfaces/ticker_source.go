package interfaces

import (
	"context"

	"ticker-cache-service/internal/domain/entities"
)

// TickerRequest describes one upstream ticker call.
type TickerRequest struct {
	IDs       []string
	Currency  string
	Intervals []string
}

// TickerSource fetches raw ticker records from the upstream API.
// Errors wrap one of the sentinels in the failures package.
type TickerSource interface {
	FetchTickers(ctx context.Context, req TickerRequest) ([]entities.RawRecord, error)
}
