package ingest

import (
	"github.com/shopspring/decimal"

	"vibebudget/internal/core"
)

// Kind is an explicit transaction-kind flag some statement formats carry
// instead of a sign convention.
type Kind string

const (
	KindNone    Kind = ""
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// NormalizeAmount parses an amount token (already sign-adjusted when it came
// from split debit/credit columns) into the canonical signed decimal:
// negative = outflow. A Kind of expense negates a positive value; an already
// canonical signed amount passes through unchanged, so normalization is
// idempotent.
func NormalizeAmount(tok string, kind Kind) (decimal.Decimal, error) {
	d, err := core.ParseAmount(tok)
	if err != nil {
		return decimal.Zero, err
	}
	if kind == KindExpense && d.IsPositive() {
		d = d.Neg()
	}
	return d, nil
}
