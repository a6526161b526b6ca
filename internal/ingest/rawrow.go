// Package ingest normalizes heterogeneous bank statements into canonical
// transactions. Statements arrive as ordered rows of header→value pairs;
// the package detects which column holds the date, description, amount and
// currency across Romanian, English and Russian bank export conventions,
// normalizes dates and amounts, and reports malformed rows without failing
// the batch.
package ingest

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Field is one header→value pair of a statement row. Value is either a
// string or a float64 (spreadsheet sources deliver numeric cells, including
// date serials, as float64).
type Field struct {
	Key   string
	Value any
}

// RawRow is one statement record with header order preserved. Bank formats
// differ per file, so rows are generic ordered maps rather than a fixed
// record type.
type RawRow []Field

// Get returns the value for an exactly matching header key.
func (r RawRow) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// IsEmpty reports whether every cell of the row is blank.
func (r RawRow) IsEmpty() bool {
	for _, f := range r {
		if token(f.Value) != "" {
			return false
		}
	}
	return true
}

// ParsedTransaction is the canonical shape produced for one accepted row.
type ParsedTransaction struct {
	Date          string // YYYY-MM-DD
	Description   string
	Amount        decimal.Decimal // negative = outflow
	Currency      string
	DateDefaulted bool   // date was unparsable and replaced with today
	Source        RawRow // original row, kept for review
}

// token renders a cell value as a trimmed string. Numeric cells keep their
// shortest decimal representation so "45.5" round-trips, not "45.500000".
func token(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return trim(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

// trim strips whitespace plus the NBSP and BOM runes some bank exports pad
// headers and cells with.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
