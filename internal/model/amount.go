package model

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ToAmount coerces a raw amount into a finite float. Numbers pass through,
// numeric strings are parsed, and anything else (nil, garbage, NaN, Inf)
// becomes 0. It never panics.
func ToAmount(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case *float64:
		if x == nil {
			return 0
		}
		f = *x
	case decimal.Decimal:
		f = x.InexactFloat64()
	case json.Number:
		return parseAmount(string(x))
	case json.RawMessage:
		return rawAmount(x)
	case []byte:
		return parseAmount(string(x))
	case string:
		return parseAmount(x)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// rawAmount handles JSON values that may be a number or a quoted string.
func rawAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return parseAmount(string(n))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseAmount(s)
	}
	return 0
}
