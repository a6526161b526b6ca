package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RowsFromFile reads statement rows from an uploaded file, routing on the
// extension. Only delimited text is parsed directly; spreadsheet and PDF
// uploads are structural errors with an actionable message.
func RowsFromFile(name string, r io.Reader) ([]RawRow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return RowsFromCSV(r)
	case ".xlsx", ".xls":
		return nil, fmt.Errorf("%w (spreadsheets: save as CSV, or connect the sheet as an import source)", ErrUnsupportedFormat)
	case ".pdf":
		return nil, fmt.Errorf("%w (PDF statements: most banks also offer a CSV export)", ErrUnsupportedFormat)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// RowsFromCSV reads a delimited-text statement. The first record is the
// header row; header order is preserved. Short records are padded so a
// ragged row degrades to missing cells instead of failing the file.
func RowsFromCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	var rows []RawRow
	for _, rec := range records[1:] {
		row := make(RawRow, 0, len(headers))
		for i, h := range headers {
			var v string
			if i < len(rec) {
				v = rec[i]
			}
			row = append(row, Field{Key: h, Value: v})
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// RowsFromValues bridges a spreadsheet values matrix (first row = headers,
// cells typed string or float64, as the Sheets API returns them) into raw
// rows. Spreadsheet date cells arrive as float64 serials and are handled by
// the date normalizer downstream.
func RowsFromValues(values [][]any) ([]RawRow, error) {
	if len(values) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = token(h)
	}

	var rows []RawRow
	for _, rec := range values[1:] {
		row := make(RawRow, 0, len(headers))
		for i, h := range headers {
			var v any
			if i < len(rec) {
				v = rec[i]
			}
			row = append(row, Field{Key: h, Value: v})
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// IsStructural reports whether err rejects the whole import as opposed to a
// domain-level empty result.
func IsStructural(err error) bool {
	return errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrUnsupportedFormat)
}
