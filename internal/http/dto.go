package http

import (
	"time"

	"github.com/shopspring/decimal"

	"vibebudget/internal/core"
	"vibebudget/internal/report"
)

// Wire representations. Monetary values travel as decimal strings so clients
// never receive binary floats.

type transactionJSON struct {
	ID          string    `json:"id"`
	BankID      *string   `json:"bank_id,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		BankID:      t.BankID,
		CategoryID:  t.CategoryID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount.String(),
		Currency:    t.Currency,
		CreatedAt:   t.CreatedAt,
	}
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

type bankJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toBankJSON(b core.Bank) bankJSON {
	return bankJSON{ID: b.ID, Name: b.Name, Color: b.Color, CreatedAt: b.CreatedAt}
}

type categoryJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:          c.ID,
		Name:        c.Name,
		Type:        string(c.Type),
		Color:       c.Color,
		Icon:        c.Icon,
		Description: c.Description,
		IsSystem:    c.IsSystem,
		CreatedAt:   c.CreatedAt,
	}
}

type currencyJSON struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	System bool   `json:"system"`
}

func toCurrencyJSON(c core.Currency) currencyJSON {
	return currencyJSON{
		ID:     c.ID,
		Code:   c.Code,
		Name:   c.Name,
		Symbol: c.Symbol,
		System: c.UserID == "",
	}
}

type keywordJSON struct {
	ID         string    `json:"id"`
	Keyword    string    `json:"keyword"`
	CategoryID string    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toKeywordJSON(k core.UserKeyword) keywordJSON {
	return keywordJSON{ID: k.ID, Keyword: k.Keyword, CategoryID: k.CategoryID, CreatedAt: k.CreatedAt}
}

type skipJSON struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type importResponse struct {
	Rows        int        `json:"rows"`
	Imported    int        `json:"imported"`
	Categorized int        `json:"categorized"`
	Skipped     []skipJSON `json:"skipped"`
	Flagged     []skipJSON `json:"flagged"`
}

type pivotCellJSON struct {
	Amount    string  `json:"amount"`
	Count     int     `json:"count"`
	ChangePct *string `json:"change_pct,omitempty"`
	Severity  string  `json:"severity"`
}

type monthChangeJSON struct {
	Month     string `json:"month"`
	ChangePct string `json:"change_pct"`
}

type pivotRowJSON struct {
	CategoryID   string                   `json:"category_id"`
	CategoryName string                   `json:"category_name"`
	CategoryIcon string                   `json:"category_icon,omitempty"`
	Months       map[string]pivotCellJSON `json:"months"`
	Total        string                   `json:"total"`
	Average      string                   `json:"average"`
	MaxIncrease  *monthChangeJSON         `json:"max_increase,omitempty"`
	MaxDecrease  *monthChangeJSON         `json:"max_decrease,omitempty"`
}

type pivotJSON struct {
	Months []string       `json:"months"`
	Rows   []pivotRowJSON `json:"rows"`
}

func toPivotJSON(p report.Pivot) pivotJSON {
	out := pivotJSON{
		Months: p.Months,
		Rows:   make([]pivotRowJSON, 0, len(p.Rows)),
	}
	if out.Months == nil {
		out.Months = []string{}
	}
	for _, row := range p.Rows {
		jr := pivotRowJSON{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			CategoryIcon: row.CategoryIcon,
			Months:       make(map[string]pivotCellJSON, len(row.Months)),
			Total:        row.Total.String(),
			Average:      row.Average.String(),
		}
		for month, cell := range row.Months {
			jr.Months[month] = pivotCellJSON{
				Amount:    cell.Amount.String(),
				Count:     cell.Count,
				ChangePct: decimalString(cell.ChangePct),
				Severity:  string(report.SeverityOf(cell.Amount, row.Average)),
			}
		}
		if row.MaxIncrease != nil {
			jr.MaxIncrease = &monthChangeJSON{Month: row.MaxIncrease.Month, ChangePct: row.MaxIncrease.ChangePct.String()}
		}
		if row.MaxDecrease != nil {
			jr.MaxDecrease = &monthChangeJSON{Month: row.MaxDecrease.Month, ChangePct: row.MaxDecrease.ChangePct.String()}
		}
		out.Rows = append(out.Rows, jr)
	}
	return out
}

type summaryJSON struct {
	TotalExpenses string `json:"total_expenses"`
	TotalIncome   string `json:"total_income"`
	Balance       string `json:"balance"`
	Count         int    `json:"count"`
}

func toSummaryJSON(s report.Summary) summaryJSON {
	return summaryJSON{
		TotalExpenses: s.TotalExpenses.String(),
		TotalIncome:   s.TotalIncome.String(),
		Balance:       s.Balance.String(),
		Count:         s.Count,
	}
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
