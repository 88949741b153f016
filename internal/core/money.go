// Package core amount parsing helpers.
//
// Amounts are shopspring decimals everywhere in the engine; these helpers
// exist at the edges where values arrive as user-entered strings.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount string to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) separators and rejects
// negative and zero values. Returns ErrInvalidAmount on anything else.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() || d.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SafeAmount parses an amount that may be missing or garbage, coercing
// anything unusable to zero. Aggregations use it so one bad record
// under-counts a total instead of aborting it.
func SafeAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
