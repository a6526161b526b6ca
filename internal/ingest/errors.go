package ingest

import "errors"

// Structural errors reject the whole import before any row is processed.
// ErrNoTransactions is different: the pass completed, every row was
// malformed. Both carry messages specific enough to show to the user.
var (
	ErrEmptyFile         = errors.New("the file contains no statement rows")
	ErrUnsupportedFormat = errors.New("unsupported file format: export the statement as CSV and try again")
	ErrNoTransactions    = errors.New("no transactions found in the file")
)
