package normalizer

import (
	"fmt"
	"strings"

	"ticker-cache-service/internal/domain/entities"
)

// Field names an optional AssetRecord field that a shape may keep.
type Field string

const (
	FieldPrice           Field = "price"
	FieldSymbol          Field = "symbol"
	FieldDisplayCurrency Field = "currency"
	FieldLogoURL         Field = "logo_url"
	FieldMarketCap       Field = "market_cap"
	FieldVolume          Field = "volume"
	FieldRank            Field = "rank"
	FieldHigh            Field = "high"
	FieldWindows         Field = "windows"
)

// Window identifies a nested change-window object in the upstream record.
type Window string

const (
	Window1h  Window = "1h"
	Window1d  Window = "1d"
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

// Shape is the response-shape policy: how ids are folded, which windows are
// requested upstream and which fields survive normalization.
type Shape struct {
	Name    string
	Fold    entities.CaseFold
	Windows []Window
	Fields  map[Field]bool
}

// Intervals returns the value of the upstream `interval` query parameter.
func (s Shape) Intervals() []string {
	out := make([]string, len(s.Windows))
	for i, w := range s.Windows {
		out[i] = string(w)
	}
	return out
}

func (s Shape) keeps(f Field) bool {
	return s.Fields[f]
}

func (s Shape) requests(w Window) bool {
	for _, x := range s.Windows {
		if x == w {
			return true
		}
	}
	return false
}

const (
	ShapeTicker = "ticker"
	ShapeSupply = "supply"
)

// TickerShape keys by upper-case id and keeps the quote currency name.
func TickerShape() Shape {
	return Shape{
		Name:    ShapeTicker,
		Fold:    entities.FoldUpper,
		Windows: []Window{Window1h, Window1d, Window7d, Window30d},
		Fields: map[Field]bool{
			FieldPrice:           true,
			FieldSymbol:          true,
			FieldDisplayCurrency: true,
			FieldLogoURL:         true,
			FieldMarketCap:       true,
			FieldRank:            true,
			FieldHigh:            true,
			FieldWindows:         true,
		},
	}
}

// SupplyShape keys by lower-case id, skips the hourly window and keeps the
// circulating-supply volume instead of the currency name.
func SupplyShape() Shape {
	return Shape{
		Name:    ShapeSupply,
		Fold:    entities.FoldLower,
		Windows: []Window{Window1d, Window7d, Window30d},
		Fields: map[Field]bool{
			FieldPrice:     true,
			FieldSymbol:    true,
			FieldLogoURL:   true,
			FieldMarketCap: true,
			FieldVolume:    true,
			FieldRank:      true,
			FieldHigh:      true,
			FieldWindows:   true,
		},
	}
}

// ShapeByName resolves a configured shape name.
func ShapeByName(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ShapeTicker:
		return TickerShape(), nil
	case ShapeSupply:
		return SupplyShape(), nil
	default:
		return Shape{}, fmt.Errorf("unknown response shape %q", name)
	}
}
