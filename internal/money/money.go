// Package money converts between major-unit decimals and integer minor units.
//
// Persisted amounts are always integer minor units (cents). Decimals only appear
// at the input boundary and in presentation.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit digits.
const Scale = 2

var (
	// ErrInvalidAmount is returned when a string is not a plain decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount is returned when an amount rounds to zero or below.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrAmountTooLarge is returned when an amount does not fit in int64 minor units.
	ErrAmountTooLarge = errors.New("amount too large")
)

var maxMajor = decimal.New(1, 16)

// ParseMajor parses a major-unit amount like "3.50".
// Surrounding whitespace is ignored; comma separators are rejected.
func ParseMajor(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, ", ") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Abs().GreaterThanOrEqual(maxMajor) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return d, nil
}

// ToMinor rounds d half away from zero to two places and returns minor units.
func ToMinor(d decimal.Decimal) int64 {
	return d.Round(Scale).Shift(Scale).IntPart()
}

// ParseMinor parses a major-unit string and converts it to positive minor units.
func ParseMinor(s string) (int64, error) {
	d, err := ParseMajor(s)
	if err != nil {
		return 0, err
	}
	minor := ToMinor(d)
	if minor <= 0 {
		return 0, ErrNonPositiveAmount
	}
	return minor, nil
}

// FromMinor converts minor units to a major-unit decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Format renders d with two decimals followed by the currency symbol, e.g. "5.00 €".
func Format(d decimal.Decimal, symbol string) string {
	if symbol == "" {
		return d.StringFixed(Scale)
	}
	return d.StringFixed(Scale) + " " + symbol
}
