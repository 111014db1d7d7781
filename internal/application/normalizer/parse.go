package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Upstream timestamps come with or without fractional seconds.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
}

func parseDecimal(v any) decimal.NullDecimal {
	switch x := v.(type) {
	case json.Number:
		return decimalFromString(x.String())
	case string:
		return decimalFromString(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(x))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(x)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(x))
	default:
		return decimal.NullDecimal{}
	}
}

func decimalFromString(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseInt(v any) *int64 {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil
		}
		n = i
	case float64:
		if x != math.Trunc(x) {
			return nil
		}
		n = int64(x)
	case int:
		n = int64(x)
	case int64:
		n = x
	default:
		return nil
	}
	return &n
}

func parseString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// percent converts an upstream fraction into a percentage rounded to 4 places.
func percent(v any) decimal.NullDecimal {
	d := parseDecimal(v)
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Mul(hundred).Round(4))
}

var hundred = decimal.NewFromInt(100)
