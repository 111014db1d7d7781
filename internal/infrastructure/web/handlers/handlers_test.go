package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-cache-service/internal/application/dto"
	"ticker-cache-service/internal/application/services"
	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
)

type stubSource struct {
	mu    sync.Mutex
	calls int
	err   error
	body  []entities.RawRecord
}

func (s *stubSource) FetchTickers(ctx context.Context, req interfaces.TickerRequest) ([]entities.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.body, s.err
}

func (s *stubSource) set(body []entities.RawRecord, err error) {
	s.mu.Lock()
	s.body, s.err = body, err
	s.mu.Unlock()
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type fixture struct {
	source *stubSource
	clock  *clock
	cache  *services.ThrottledCache
	router *mux.Router
}

func newFixture(t *testing.T, staleAfter time.Duration, checks map[string]DependencyCheck) *fixture {
	t.Helper()
	f := &fixture{
		source: &stubSource{body: []entities.RawRecord{
			{"id": "BTC", "price": "64000.5", "symbol": "BTC", "1d": map[string]any{"price_change": "100", "price_change_pct": "0.0123"}},
		}},
		clock: &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	cache, err := services.NewThrottledCache(f.source, nil, []string{"BTC", "ETH"}, "usd", time.Hour,
		services.WithClock(f.clock.Now),
		services.WithFailureSink(nopSink{}))
	require.NoError(t, err)
	f.cache = cache

	policy := services.AvailabilityPolicy{StaleAfter: staleAfter, Now: f.clock.Now}
	assets := NewAssetHandler(cache, policy)
	health := NewHealthHandler(cache, policy, checks)

	r := mux.NewRouter()
	r.HandleFunc("/health", health.Health)
	r.HandleFunc("/ready", health.Ready)
	r.HandleFunc("/api/v1/assets", assets.GetAssets)
	r.HandleFunc("/api/v1/assets/{id}", assets.GetAsset)
	r.HandleFunc("/api/v1/refresh", assets.Refresh)
	r.HandleFunc("/api/v1/status", assets.Status)
	f.router = r
	return f
}

type nopSink struct{}

func (nopSink) ReportFailure(context.Context, failures.Event) {}

func (f *fixture) do(t *testing.T, method, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestAssetHandler_BeforeFirstFetch(t *testing.T) {
	f := newFixture(t, 0, nil)

	var list dto.AssetsResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/assets", &list))
	assert.Empty(t, list.Assets)
	assert.Equal(t, []string{"BTC", "ETH"}, list.Missing)
	assert.Nil(t, list.LastUpdated)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/assets/btc", &errResp))
	assert.Equal(t, "ASSET_NOT_FOUND", errResp.Error)

	assert.Zero(t, f.source.calls, "reads never call the upstream")
}

func TestAssetHandler_RefreshThenRead(t *testing.T) {
	f := newFixture(t, 0, nil)

	var refresh dto.RefreshResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/refresh", &refresh))
	assert.Equal(t, "fetched", refresh.Outcome)
	assert.NotNil(t, refresh.LastUpdated)
	assert.Nil(t, refresh.NextEligibleRefresh)

	var asset dto.AssetResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/assets/btc", &asset))
	assert.Equal(t, "BTC", asset.ID)
	assert.True(t, asset.Available)
	assert.Equal(t, "64000.5", asset.CurrentPrice.Decimal.String())
	assert.Equal(t, "1.23", asset.DeltaPct24h.Decimal.String())
	assert.False(t, asset.DeltaPct1h.Valid)

	var list dto.AssetsResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/assets?ids=eth,btc", &list))
	require.Len(t, list.Assets, 1)
	assert.Equal(t, "BTC", list.Assets[0].ID)
	assert.Equal(t, []string{"ETH"}, list.Missing)
	assert.Equal(t, "USD", list.Currency)

	// second refresh inside the window is throttled
	f.clock.now = f.clock.now.Add(10 * time.Second)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/refresh", &refresh))
	assert.Equal(t, "throttled", refresh.Outcome)
	require.NotNil(t, refresh.NextEligibleRefresh)
	assert.Equal(t, 1, f.source.calls)
}

func TestAssetHandler_RefreshFailureKeepsServing(t *testing.T) {
	f := newFixture(t, 0, nil)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/refresh", nil))

	f.source.set(nil, fmt.Errorf("%w: HTTP 500", failures.ErrUpstreamStatus))
	f.clock.now = f.clock.now.Add(2 * time.Hour)

	var refresh dto.RefreshResponse
	assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodPost, "/api/v1/refresh", &refresh))
	assert.Equal(t, "failed", refresh.Outcome)
	assert.Equal(t, "status", refresh.FailureKind)
	assert.Equal(t, failures.ErrUpstreamStatus.Error(), refresh.Error)

	var asset dto.AssetResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/assets/BTC", &asset))
	assert.Equal(t, "64000.5", asset.CurrentPrice.Decimal.String())

	var status dto.StatusResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/status", &status))
	require.NotNil(t, status.LastFailure)
	assert.Equal(t, "status", status.LastFailure.Kind)
	require.NotNil(t, status.LastFailure.StaleSince)
	assert.Equal(t, 1, status.Records)
	assert.Equal(t, []string{"BTC", "ETH"}, status.TrackedIDs)
}

func TestAssetHandler_InvalidIDs(t *testing.T) {
	f := newFixture(t, 0, nil)

	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/assets?ids=DOGE", &errResp))
	assert.Equal(t, "INVALID_PARAMETER", errResp.Error)
}

func TestHealthHandler_Ready(t *testing.T) {
	var mirrorErr error
	f := newFixture(t, 2*time.Hour, map[string]DependencyCheck{
		"mirror": func(context.Context) error { return mirrorErr },
	})

	var health dto.HealthResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", &health))
	assert.Equal(t, "healthy", health.Status)

	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/ready", &health))
	assert.Equal(t, "never fetched", health.Services["snapshot"])

	f.do(t, http.MethodPost, "/api/v1/refresh", nil)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/ready", &health))
	assert.Equal(t, "ready", health.Status)
	assert.Equal(t, "ready", health.Services["mirror"])

	mirrorErr = errors.New("connection refused")
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/ready", &health))
	assert.Equal(t, "degraded", health.Status)

	f.clock.now = f.clock.now.Add(3 * time.Hour)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/ready", &health))
	assert.Contains(t, health.Services["snapshot"], "stale for")
}
