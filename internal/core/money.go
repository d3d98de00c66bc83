// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount expressed in integer cents.
type Money struct {
	Cents int64
}

// maxCents bounds a single parsed amount. Int64 sums of up to a thousand
// such amounts stay exact; Advise compares in decimal and does not rely on it.
var maxCents = decimal.NewFromInt((1<<63 - 1) / 1000)

// Exponent window accepted by parseDecimal. Rescaling to an exponent far
// outside it allocates and loops over every digit.
const (
	minExponent = -18
	maxExponent = 18
)

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted, as is
// scientific notation (1e3). The result is always positive cents; invalid
// formats, negative values and amounts that round to zero return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("-5")     -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseAmount parses a positive decimal amount into Money.
func ParseAmount(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Euros returns the value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "150.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsPositive() bool { return m.Cents > 0 }

// MarshalJSON encodes the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string. Zero and
// negative values are decoded as-is; validation belongs to the caller.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		m.Cents = 0
		return nil
	}
	d, err := parseDecimal(string(data))
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
