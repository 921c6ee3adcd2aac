package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest magnitude a stored dollar column (NUMERIC(15,2)) holds.
const MaxAmount = 9999999999999.99

// ValidAmount reports whether v fits a stored dollar column.
func ValidAmount(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= MaxAmount
}

// RoundCents rounds a dollar amount half away from zero to two decimals.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundPct rounds a percentage to six decimals.
func RoundPct(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(6).Float64()
	return f
}

// ParseAmount parses a dollar amount such as "1,250.75", "$-30" or "(12.50)".
func ParseAmount(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		neg = true
		raw = raw[1 : len(raw)-1]
	}
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, "$", "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	f, _ := d.Float64()
	if !ValidAmount(f) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return f, nil
}
