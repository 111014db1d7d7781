// Package normalizer turns loosely typed upstream ticker records into
// fixed-shape AssetRecords.
package normalizer

import (
	"time"

	"github.com/shopspring/decimal"

	"ticker-cache-service/internal/domain/entities"
)

// EpochZero is the high timestamp used when the upstream value is missing or unusable.
var EpochZero = time.Unix(0, 0).UTC()

// Normalizer maps raw records according to a Shape. It holds no mutable state.
type Normalizer struct {
	shape Shape
}

// New creates a normalizer for the given shape.
func New(shape Shape) *Normalizer {
	return &Normalizer{shape: shape}
}

// Shape returns the response-shape policy in use.
func (n *Normalizer) Shape() Shape {
	return n.shape
}

// Normalize maps one raw record. It never fails: a malformed field becomes
// absent and leaves every other field untouched. The id is copied verbatim;
// an empty ID means the record had no usable id.
func (n *Normalizer) Normalize(raw entities.RawRecord) entities.AssetRecord {
	var rec entities.AssetRecord
	if id, ok := raw.ID(); ok {
		rec.ID = id
	}

	s := n.shape
	if s.keeps(FieldPrice) {
		rec.CurrentPrice = parseDecimal(raw["price"])
	}
	if s.keeps(FieldSymbol) {
		rec.Symbol = parseString(raw["symbol"])
	}
	if s.keeps(FieldDisplayCurrency) {
		rec.DisplayCurrency = parseString(raw["name"])
	}
	if s.keeps(FieldLogoURL) {
		rec.LogoURL = parseString(raw["logo_url"])
	}
	if s.keeps(FieldMarketCap) {
		rec.MarketCap = parseDecimal(raw["market_cap"])
	}
	if s.keeps(FieldVolume) {
		rec.Volume = parseDecimal(raw["circulating_supply"])
	}
	if s.keeps(FieldRank) {
		rec.Rank = parseInt(raw["rank"])
	}
	if s.keeps(FieldHigh) {
		rec.High = parseDecimal(raw["high"])
		ts := EpochZero
		if t, ok := parseTimestamp(raw["high_timestamp"]); ok {
			ts = t
		}
		rec.HighTimestamp = &ts
	}
	if s.keeps(FieldWindows) {
		rec.Delta1h, rec.DeltaPct1h = n.window(raw, Window1h)
		rec.Delta24h, rec.DeltaPct24h = n.window(raw, Window1d)
		rec.Delta7d, rec.DeltaPct7d = n.window(raw, Window7d)
		rec.Delta30d, rec.DeltaPct30d = n.window(raw, Window30d)
	}
	return rec
}

func (n *Normalizer) window(raw entities.RawRecord, w Window) (delta, pct decimal.NullDecimal) {
	if !n.shape.requests(w) {
		return
	}
	obj, ok := raw[string(w)].(map[string]any)
	if !ok {
		return
	}
	return parseDecimal(obj["price_change"]), percent(obj["price_change_pct"])
}
