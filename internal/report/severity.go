package report

import "github.com/shopspring/decimal"

// Severity buckets a month's spend relative to the row average, so the UI
// can color cells without redoing the math.
type Severity string

const (
	SeverityNone         Severity = "none"
	SeverityCritical     Severity = "critical"
	SeverityHigh         Severity = "high"
	SeverityNormal       Severity = "normal"
	SeverityBelowAverage Severity = "below-average"
)

var (
	criticalRatio = decimal.NewFromFloat(1.5)
	highRatio     = decimal.NewFromFloat(1.2)
	normalRatio   = decimal.NewFromFloat(0.8)
)

// SeverityOf classifies amount against average. Zero spend is "none"
// regardless of the average; a positive spend against a non-positive average
// can only happen with degenerate input and is treated as critical.
func SeverityOf(amount, average decimal.Decimal) Severity {
	if !amount.IsPositive() {
		return SeverityNone
	}
	if !average.IsPositive() {
		return SeverityCritical
	}
	ratio := amount.Div(average)
	switch {
	case ratio.GreaterThanOrEqual(criticalRatio):
		return SeverityCritical
	case ratio.GreaterThanOrEqual(highRatio):
		return SeverityHigh
	case ratio.GreaterThanOrEqual(normalRatio):
		return SeverityNormal
	default:
		return SeverityBelowAverage
	}
}
