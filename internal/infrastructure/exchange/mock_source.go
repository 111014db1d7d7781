// Package exchange holds ticker sources that do not talk to a real upstream.
package exchange

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/logging"
)

type mockAsset struct {
	symbol    string
	name      string
	rank      int64
	basePrice float64 // usd
	supply    float64
}

// MockSource implementa TickerSource con precios sintéticos para development.
// Devuelve registros con la misma forma que la API real, números como strings.
type MockSource struct {
	mu       sync.Mutex
	assets   map[string]mockAsset
	rates    map[string]float64 // usd -> moneda
	variance float64
	rnd      *rand.Rand
	now      func() time.Time
}

// NewMockSource crea una fuente con BTC, ETH, LTC y XRP
func NewMockSource() *MockSource {
	return &MockSource{
		assets: map[string]mockAsset{
			"BTC": {symbol: "BTC", name: "Bitcoin", rank: 1, basePrice: 65000, supply: 19_700_000},
			"ETH": {symbol: "ETH", name: "Ethereum", rank: 2, basePrice: 3200, supply: 120_000_000},
			"LTC": {symbol: "LTC", name: "Litecoin", rank: 20, basePrice: 95, supply: 74_000_000},
			"XRP": {symbol: "XRP", name: "XRP", rank: 6, basePrice: 0.52, supply: 54_000_000_000},
		},
		rates: map[string]float64{
			"USD": 1,
			"EUR": 0.92,
			"CHF": 0.9,
		},
		variance: 0.02, // ±2%
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

func (m *MockSource) addAsset(id, name string, basePrice float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.ToUpper(id)
	m.assets[id] = mockAsset{symbol: id, name: name, rank: int64(len(m.assets) + 1), basePrice: basePrice}
}

// lookup acepta el símbolo (BTC) o el nombre (bitcoin); must be called with mu held
func (m *MockSource) lookup(id string) (mockAsset, bool) {
	key := strings.TrimSpace(id)
	if a, ok := m.assets[strings.ToUpper(key)]; ok {
		return a, true
	}
	for _, a := range m.assets {
		if strings.EqualFold(a.name, key) {
			return a, true
		}
	}
	return mockAsset{}, false
}

// SetVariance configura la variación porcentual; 0 devuelve siempre el precio base
func (m *MockSource) SetVariance(variance float64) {
	m.mu.Lock()
	m.variance = variance
	m.mu.Unlock()
}

// FetchTickers returns one record per known id, keyed by the id as requested.
// Unknown ids are omitted like upstream does.
func (m *MockSource) FetchTickers(ctx context.Context, req interfaces.TickerRequest) ([]entities.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", failures.ErrTransport, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rate, ok := m.rates[strings.ToUpper(req.Currency)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported currency %q", failures.ErrUpstreamStatus, req.Currency)
	}

	now := m.now().UTC()
	records := make([]entities.RawRecord, 0, len(req.IDs))
	var unknown []string
	for _, id := range req.IDs {
		asset, ok := m.lookup(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		rec := m.record(asset, rate, req.Intervals, now)
		rec["id"] = strings.TrimSpace(id)
		records = append(records, rec)
	}

	if len(unknown) > 0 {
		logging.Warn(ctx, "MockSource: unknown ids omitted", logging.Fields{
			"unknown_ids":         unknown,
			logging.FieldCurrency: req.Currency,
		})
	}

	logging.Debug(ctx, "MockSource: generated synthetic tickers", logging.Fields{
		logging.FieldAssetIDs: req.IDs,
		logging.FieldCurrency: req.Currency,
		"returned_count":      len(records),
	})
	return records, nil
}

func (m *MockSource) record(a mockAsset, rate float64, intervals []string, now time.Time) entities.RawRecord {
	price := a.basePrice * rate * (1 + m.jitter())
	high := a.basePrice * rate * 1.1

	rec := entities.RawRecord{
		"id":                 a.symbol,
		"symbol":             a.symbol,
		"name":               a.name,
		"logo_url":           fmt.Sprintf("https://example.invalid/logos/%s.svg", strings.ToLower(a.symbol)),
		"price":              formatNumber(price),
		"market_cap":         formatNumber(price * a.supply),
		"circulating_supply": formatNumber(a.supply),
		"rank":               fmt.Sprintf("%d", a.rank),
		"high":               formatNumber(high),
		"high_timestamp":     now.Add(-30 * 24 * time.Hour).Format(time.RFC3339),
	}
	for _, interval := range intervals {
		pct := m.jitter()
		rec[interval] = map[string]any{
			"price_change":     formatNumber(price * pct),
			"price_change_pct": decimal.NewFromFloat(pct).Round(6).String(),
		}
	}
	return rec
}

// jitter must be called with mu held
func (m *MockSource) jitter() float64 {
	return (m.rnd.Float64()*2 - 1) * m.variance
}

func formatNumber(f float64) string {
	return decimal.NewFromFloat(f).Round(8).String()
}

var _ interfaces.TickerSource = (*MockSource)(nil)
