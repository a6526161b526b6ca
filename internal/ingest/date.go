package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet date serials count days from the 1899-12-30 epoch (shifted two
// days from 1900-01-01 to absorb the format's historical leap-year defect).
// Serials outside this window are treated as plain numbers, not dates.
const (
	serialMin = 40000 // ≈ 2009
	serialMax = 60000 // ≈ 2064
)

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	dateShapedRe = regexp.MustCompile(`^\d{1,2}[./-]\d{1,2}[./-]\d{2,4}$|^\d{4}-\d{2}-\d{2}(\s\d{2}:\d{2}(:\d{2})?)?$`)
	isoPrefixRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dayMonYearRe = regexp.MustCompile(`^(\d{2})\s+([A-Za-z]{3})\s+(\d{4})$`)
	partsSplitRe = regexp.MustCompile(`[./-]`)
)

var monthAbbrev = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// looksLikeDate reports whether a string value is shaped like a supported
// date token (locale numeric date, or ISO date with optional time).
func looksLikeDate(s string) bool {
	return dateShapedRe.MatchString(s)
}

// NormalizeDate converts a raw date cell into canonical YYYY-MM-DD.
//
// Resolution order, first match wins:
//  1. numeric serial in the spreadsheet range → epoch conversion, date only
//  2. string with a YYYY-MM-DD prefix → prefix verbatim (time part dropped)
//  3. "DD MMM YYYY" with an English month abbreviation → reassembled
//  4. three parts split by "." "/" or "-" → day/month/year reassembled,
//     2-digit years expanded by prefixing "20"
//
// Reassembled strings are checked against the calendar: a month-first token
// like "12/31/2025" reassembles to month 31 and is rejected, not passed on
// as a bogus date. Anything unresolvable returns ok=false; the caller
// decides between defaulting to the current date (lenient mode) and dropping
// the row (strict mode).
func NormalizeDate(v any) (string, bool) {
	// Serial check first: spreadsheet cells arrive as float64, but some CSV
	// exports carry the serial as a numeric string.
	if serial, ok := asSerial(v); ok {
		return serialEpoch.AddDate(0, 0, serial).Format("2006-01-02"), true
	}

	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = trim(s)

	if isoPrefixRe.MatchString(s) {
		s = strings.SplitN(s, " ", 2)[0]
		s = strings.SplitN(s, "T", 2)[0]
		return calendarDate(s)
	}

	if m := dayMonYearRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthAbbrev[strings.ToLower(m[2])]; ok {
			return calendarDate(fmt.Sprintf("%s-%s-%s", m[3], month, m[1]))
		}
	}

	if parts := partsSplitRe.Split(s, -1); len(parts) == 3 {
		day, month, year := parts[0], parts[1], parts[2]
		if !allDigits(day) || !allDigits(month) || !allDigits(year) {
			return "", false
		}
		if len(year) == 2 {
			year = "20" + year
		}
		return calendarDate(fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day)))
	}

	return "", false
}

// calendarDate accepts a reassembled YYYY-MM-DD string only if it names a
// real calendar day, so downstream validation never sees an impossible date.
func calendarDate(s string) (string, bool) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

func asSerial(v any) (int, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case string:
		f, err := strconv.ParseFloat(trim(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if n <= serialMin || n >= serialMax {
		return 0, false
	}
	return int(n), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
