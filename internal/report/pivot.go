// Package report folds classified transactions into a category × month pivot
// with totals, averages, month-over-month change and severity buckets. All
// structures here are derived views: they are recomputed on every report
// request and never persisted.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"vibebudget/internal/core"
)

// Transactions without a category fall into this synthetic bucket.
const (
	UncategorizedID   = "__uncategorized"
	UncategorizedName = "Necategorizat"
	UncategorizedIcon = "❓"
)

type (
	// Cell is one (category, month) aggregate. Amount is the absolute value
	// of that month's outflows. ChangePct is nil for the first month and for
	// months whose previous amount was not strictly positive.
	Cell struct {
		Amount    decimal.Decimal
		Count     int
		ChangePct *decimal.Decimal
	}

	// MonthChange names the month a row's extreme change happened in.
	MonthChange struct {
		Month     string
		ChangePct decimal.Decimal
	}

	Row struct {
		CategoryID   string
		CategoryName string
		CategoryIcon string
		Months       map[string]Cell
		Total        decimal.Decimal
		Average      decimal.Decimal
		MaxIncrease  *MonthChange
		MaxDecrease  *MonthChange
	}

	// Pivot is the category × month matrix. Months are ascending YYYY-MM
	// keys (lexicographic order is chronological for this format); every row
	// has a cell for every month, zero-filled where nothing was spent.
	Pivot struct {
		Months []string
		Rows   []Row
	}
)

// BuildPivot aggregates the expense side of the given transactions.
// Categories metadata supplies names and icons; unknown or missing category
// ids land in the uncategorized bucket. An empty input yields an empty
// pivot, never an error.
func BuildPivot(txs []core.Transaction, categories []core.Category) Pivot {
	catMeta := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		catMeta[c.ID] = c
	}

	type bucket struct {
		name, icon string
		months     map[string]*Cell
	}
	buckets := make(map[string]*bucket)
	var order []string // first-encountered category order, for determinism
	monthSet := make(map[string]bool)

	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		id := UncategorizedID
		name, icon := UncategorizedName, UncategorizedIcon
		if tx.CategoryID != nil {
			if meta, ok := catMeta[*tx.CategoryID]; ok {
				id, name, icon = meta.ID, meta.Name, meta.Icon
			}
		}
		month := tx.Month()
		monthSet[month] = true

		b, ok := buckets[id]
		if !ok {
			b = &bucket{name: name, icon: icon, months: make(map[string]*Cell)}
			buckets[id] = b
			order = append(order, id)
		}
		cell, ok := b.months[month]
		if !ok {
			cell = &Cell{Amount: decimal.Zero}
			b.months[month] = cell
		}
		cell.Amount = cell.Amount.Add(tx.Amount.Abs())
		cell.Count++
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	rows := make([]Row, 0, len(buckets))
	for _, id := range order {
		rows = append(rows, buildRow(id, buckets[id].name, buckets[id].icon, buckets[id].months, months))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})

	return Pivot{Months: months, Rows: rows}
}

var hundred = decimal.NewFromInt(100)

func buildRow(id, name, icon string, observed map[string]*Cell, months []string) Row {
	row := Row{
		CategoryID:   id,
		CategoryName: name,
		CategoryIcon: icon,
		Months:       make(map[string]Cell, len(months)),
		Total:        decimal.Zero,
		Average:      decimal.Zero,
	}

	for _, m := range months {
		cell := Cell{Amount: decimal.Zero}
		if c, ok := observed[m]; ok {
			cell = *c
		}
		row.Months[m] = cell
		row.Total = row.Total.Add(cell.Amount)
	}
	if len(months) > 0 {
		row.Average = row.Total.DivRound(decimal.NewFromInt(int64(len(months))), 2)
	}

	// Month-over-month change: only defined when the previous month's
	// amount is strictly positive. The first month never has one. Ties on
	// the extremes keep the first month encountered.
	var prev *decimal.Decimal
	for _, m := range months {
		cell := row.Months[m]
		if prev != nil && prev.IsPositive() {
			change := cell.Amount.Sub(*prev).Mul(hundred).DivRound(*prev, 2)
			cell.ChangePct = &change
			row.Months[m] = cell

			if change.IsPositive() && (row.MaxIncrease == nil || change.GreaterThan(row.MaxIncrease.ChangePct)) {
				row.MaxIncrease = &MonthChange{Month: m, ChangePct: change}
			}
			if change.IsNegative() && (row.MaxDecrease == nil || change.LessThan(row.MaxDecrease.ChangePct)) {
				row.MaxDecrease = &MonthChange{Month: m, ChangePct: change}
			}
		}
		amount := cell.Amount
		prev = &amount
	}

	return row
}
