package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetRecord is the normalized view of one tracked asset.
// Every optional field is independently present or absent: a NullDecimal with
// Valid=false or a nil pointer means the upstream did not provide a usable value.
type AssetRecord struct {
	ID              string              `json:"id"`
	CurrentPrice    decimal.NullDecimal `json:"current_price"`
	Symbol          *string             `json:"symbol"`
	DisplayCurrency *string             `json:"currency"`
	LogoURL         *string             `json:"logo_url"`
	MarketCap       decimal.NullDecimal `json:"market_cap"`
	Volume          decimal.NullDecimal `json:"volume"`
	Rank            *int64              `json:"rank"`
	High            decimal.NullDecimal `json:"high"`
	HighTimestamp   *time.Time          `json:"high_timestamp"`

	Delta1h  decimal.NullDecimal `json:"1_hr"`
	Delta24h decimal.NullDecimal `json:"24_hr"`
	Delta7d  decimal.NullDecimal `json:"7_day"`
	Delta30d decimal.NullDecimal `json:"30_day"`

	DeltaPct1h  decimal.NullDecimal `json:"1_hr_pct"`
	DeltaPct24h decimal.NullDecimal `json:"24_hr_pct"`
	DeltaPct7d  decimal.NullDecimal `json:"7_day_pct"`
	DeltaPct30d decimal.NullDecimal `json:"30_day_pct"`
}

// Clone returns a copy that shares no pointers with r.
func (r AssetRecord) Clone() AssetRecord {
	out := r
	out.Symbol = cloneString(r.Symbol)
	out.DisplayCurrency = cloneString(r.DisplayCurrency)
	out.LogoURL = cloneString(r.LogoURL)
	if r.Rank != nil {
		v := *r.Rank
		out.Rank = &v
	}
	if r.HighTimestamp != nil {
		v := *r.HighTimestamp
		out.HighTimestamp = &v
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// CaseFold is the case folding applied to asset ids and currency codes.
type CaseFold string

const (
	FoldUpper CaseFold = "upper"
	FoldLower CaseFold = "lower"
)

// Canonicalize trims whitespace and folds the case of an identifier.
func (f CaseFold) Canonicalize(id string) string {
	id = strings.TrimSpace(id)
	if f == FoldLower {
		return strings.ToLower(id)
	}
	return strings.ToUpper(id)
}
