// Package core defines the ledger domain model shared by ingestion,
// classification, reporting and storage.
//
// This file contains parsing helpers for monetary amounts. All amounts are
// decimal.Decimal values rounded to 2 places; negative means outflow.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw amount token into a signed decimal with
// 2-place precision.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional leading sign, and surrounding whitespace. Thousands separators are
// not supported: a string with both "." and "," is rejected rather than
// guessed at.
//
// Examples:
//
//	ParseAmount("-45.50") -> -45.50, nil
//	ParseAmount("45,50")  -> 45.50, nil
//	ParseAmount("abc")    -> 0, error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// MustAmount parses a known-good literal. Intended for rule tables and tests.
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic("core: bad amount literal " + s)
	}
	return d
}
