package ingest

import (
	"fmt"
	"time"
)

// Options controls row parsing.
type Options struct {
	// StrictDates drops rows with unparsable dates instead of defaulting
	// them to the current date. The lenient default matches the historical
	// behavior of this importer; see the skip log for defaulted rows.
	StrictDates bool

	// DefaultCurrency is used when a row has no currency column.
	DefaultCurrency string

	// Now supplies the fallback date in lenient mode. Defaults to time.Now.
	Now func() time.Time
}

// Skip records one dropped (or flagged) input row.
type Skip struct {
	Row    int // 1-based position in the input
	Reason string
}

// Result is the outcome of parsing one statement. Skipped rows were dropped;
// Flagged rows were imported but deserve review (currently only defaulted
// dates). The two sets are disjoint, so imported + skipped adds up to the
// usable row count.
type Result struct {
	Transactions []ParsedTransaction
	Skipped      []Skip
	Flagged      []Skip
	RowCount     int
}

// Parser turns raw statement rows into canonical transactions.
type Parser struct {
	detector Detector
	opts     Options
}

func NewParser(opts Options) *Parser {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "RON"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Parser{detector: NewDetector(), opts: opts}
}

// Parse walks the rows and emits one ParsedTransaction per usable row.
// Malformed rows are skipped with a reason; partial success is expected.
// An empty input is a structural error, a full pass that yields nothing is
// ErrNoTransactions.
func (p *Parser) Parse(rows []RawRow) (Result, error) {
	res := Result{RowCount: len(rows)}
	if len(rows) == 0 {
		return res, ErrEmptyFile
	}

	for i, row := range rows {
		if row.IsEmpty() {
			continue
		}
		tx, skip := p.parseRow(row)
		if skip != "" {
			res.Skipped = append(res.Skipped, Skip{Row: i + 1, Reason: skip})
			continue
		}
		if tx.DateDefaulted {
			res.Flagged = append(res.Flagged, Skip{Row: i + 1, Reason: "date unparsable, defaulted to today"})
		}
		res.Transactions = append(res.Transactions, tx)
	}

	if len(res.Transactions) == 0 {
		return res, ErrNoTransactions
	}
	return res, nil
}

func (p *Parser) parseRow(row RawRow) (ParsedTransaction, string) {
	rawDate, ok := p.detector.Date(row)
	if !ok {
		return ParsedTransaction{}, "no date column detected"
	}

	desc, ok := p.detector.Description(row)
	if !ok {
		return ParsedTransaction{}, "no description column detected"
	}

	amountTok, ok := p.detector.Amount(row)
	if !ok {
		return ParsedTransaction{}, "no amount column detected"
	}
	amount, err := NormalizeAmount(amountTok, KindNone)
	if err != nil {
		return ParsedTransaction{}, fmt.Sprintf("unparsable amount %q", amountTok)
	}

	date, ok := NormalizeDate(rawDate)
	defaulted := false
	if !ok {
		if p.opts.StrictDates {
			return ParsedTransaction{}, fmt.Sprintf("unparsable date %q", token(rawDate))
		}
		date = p.opts.Now().Format("2006-01-02")
		defaulted = true
	}

	currency, ok := p.detector.Currency(row)
	if !ok {
		currency = p.opts.DefaultCurrency
	}

	return ParsedTransaction{
		Date:          date,
		Description:   desc,
		Amount:        amount,
		Currency:      currency,
		DateDefaulted: defaulted,
		Source:        row,
	}, ""
}
