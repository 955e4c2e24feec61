package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinIncrement is the smallest step above current a new bid must clear.
func MinIncrement(current int64) int64 {
	switch {
	case current <= 0:
		return 1000
	case current < 20000:
		return 1000
	case current < 40000:
		return 2000
	case current < 70000:
		return 3000
	case current < 100000:
		return 4000
	default:
		return 5000
	}
}

// MinimumBid is the lowest acceptable amount against current.
func MinimumBid(current int64) int64 {
	return current + MinIncrement(current)
}

var thousand = decimal.NewFromInt(1000)

// ParseAmount reads user supplied prices such as "7000", "10,000", "5.5k" or
// "Base: 12k". Amounts must resolve to a non-negative whole number.
func ParseAmount(text string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, "base:", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	multiplier := decimal.NewFromInt(1)
	if strings.HasSuffix(s, "k") {
		multiplier = thousand
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Mul(multiplier)
	if d.IsNegative() || !d.Equal(d.Truncate(0)) || !d.LessThan(decimal.NewFromInt(1<<53)) {
		return 0, ErrInvalidAmount
	}
	return d.IntPart(), nil
}
