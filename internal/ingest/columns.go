package ingest

import "strings"

// HeaderTables holds the recognized header substrings for each canonical
// field, in priority order. The lists are data: adding a new bank format
// means extending them, not touching the detection logic. Matching is
// case-insensitive against a trimmed header key.
type HeaderTables struct {
	Date        []string
	Description []string
	Amount      []string
	Currency    []string
	Debit       []string
	Credit      []string
}

// DefaultHeaderTables covers the statement formats seen in the wild so far:
// Romanian banks (ING, BCR, BT), Revolut RO/EN (including the mangled
// diacritics Excel exports produce, "SumÄ" for "Sumă"), and Russian-language
// Revolut exports.
func DefaultHeaderTables() HeaderTables {
	return HeaderTables{
		Date: []string{
			"completed", "data", "date", "început", "inceput", "änceput", "start",
			"data operatiunii", "data tranzactiei",
			"дата", "дата начала", "дата выполнения",
		},
		Description: []string{
			"descriere", "description", "detalii", "details", "beneficiar",
			"описание",
		},
		Amount: []string{
			"sumă", "sumä", "suma", "amount", "valoare", "value", "total",
			"сумма",
		},
		Currency: []string{
			"moneda", "currency", "valuta",
			"валюта",
		},
		Debit:  []string{"debit"},
		Credit: []string{"credit"},
	}
}

// Detector locates canonical fields inside a raw statement row. It is a pure
// function over one row: malformed headers yield absent results, never
// errors.
type Detector struct {
	Tables HeaderTables
}

func NewDetector() Detector {
	return Detector{Tables: DefaultHeaderTables()}
}

// Date returns the raw value of the date column. When no header matches, it
// falls back to the first cell whose value is date-shaped.
func (d Detector) Date(row RawRow) (any, bool) {
	if v, ok := d.byHeader(row, d.Tables.Date); ok {
		return v, true
	}
	for _, f := range row {
		if s, ok := f.Value.(string); ok && looksLikeDate(trim(s)) {
			return f.Value, true
		}
	}
	return nil, false
}

// Description returns the description cell. There is no positional fallback:
// without a recognizable header the row cannot be classified.
func (d Detector) Description(row RawRow) (string, bool) {
	v, ok := d.byHeader(row, d.Tables.Description)
	if !ok {
		return "", false
	}
	s := token(v)
	return s, s != ""
}

// Amount returns a sign-carrying amount token. When no amount header
// matches, it falls back to separate debit/credit columns: a non-empty debit
// is negated and wins over credit.
func (d Detector) Amount(row RawRow) (string, bool) {
	if v, ok := d.byHeader(row, d.Tables.Amount); ok {
		s := token(v)
		return s, s != ""
	}

	var debit, credit string
	for _, f := range row {
		key := strings.ToLower(trim(f.Key))
		if containsAny(key, d.Tables.Debit) {
			debit = token(f.Value)
		}
		if containsAny(key, d.Tables.Credit) {
			credit = token(f.Value)
		}
	}
	if debit != "" {
		return "-" + debit, true
	}
	if credit != "" {
		return credit, true
	}
	return "", false
}

// Currency returns the currency cell. No fallback.
func (d Detector) Currency(row RawRow) (string, bool) {
	v, ok := d.byHeader(row, d.Tables.Currency)
	if !ok {
		return "", false
	}
	s := token(v)
	return s, s != ""
}

// byHeader returns the value of the first column whose normalized header
// contains any of the recognized substrings.
func (d Detector) byHeader(row RawRow, recognized []string) (any, bool) {
	for _, f := range row {
		key := strings.ToLower(trim(f.Key))
		if containsAny(key, recognized) {
			return f.Value, true
		}
	}
	return nil, false
}

func containsAny(key string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(key, sub) {
			return true
		}
	}
	return false
}
