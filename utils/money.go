package utils

import (
	"errors"

	"github.com/shopspring/decimal"
)

// All money is stored and computed as integer cents. Register hardware and
// the POS report decimal dollar strings; decimal keeps that edge conversion
// exact (no float rounding on e.g. "104.35").

// ParseDollarsToCents converts a decimal dollar string ("104.35") to cents.
// More than two fractional digits is a validation error, not a rounding case.
func ParseDollarsToCents(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.New("invalid money amount")
	}
	if d.Exponent() < -2 {
		return 0, errors.New("money amount has sub-cent precision")
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

// CentsToDollarString renders cents as a plain dollar string ("104.35").
func CentsToDollarString(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// RoundUpToDollarCents rounds a non-negative cent amount up to the next whole
// dollar. Negative input clamps to zero (a deposit is never negative).
func RoundUpToDollarCents(cents int64) int64 {
	if cents <= 0 {
		return 0
	}
	if cents%100 == 0 {
		return cents
	}
	return (cents/100 + 1) * 100
}
