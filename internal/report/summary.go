package report

import (
	"github.com/shopspring/decimal"

	"vibebudget/internal/core"
)

// Summary is the headline stats block: expenses as a positive magnitude,
// income, and their difference.
type Summary struct {
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
	Balance       decimal.Decimal
	Count         int
}

// Summarize totals the given transactions. Negative amounts accumulate into
// TotalExpenses (as absolute values), positive ones into TotalIncome.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{
		TotalExpenses: decimal.Zero,
		TotalIncome:   decimal.Zero,
		Balance:       decimal.Zero,
		Count:         len(txs),
	}
	for _, tx := range txs {
		if tx.IsExpense() {
			s.TotalExpenses = s.TotalExpenses.Add(tx.Amount.Abs())
		} else {
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}
