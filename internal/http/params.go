// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data:
// date range query parameters, transaction list filters and JSON bodies.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vibebudget/internal/core"
	"vibebudget/internal/storage"
)

// maxBodyBytes bounds JSON request bodies. Statement uploads have their own
// multipart limit.
const maxBodyBytes = 1 << 20

// RangeParams holds an inclusive date range. Empty bounds mean unbounded.
type RangeParams struct {
	From string
	To   string
}

// ParseRangeParams extracts and validates from/to query parameters.
func ParseRangeParams(query url.Values) (RangeParams, error) {
	var p RangeParams
	var err error

	if p.From, err = parseDateParam(query, "from"); err != nil {
		return p, err
	}
	if p.To, err = parseDateParam(query, "to"); err != nil {
		return p, err
	}
	if p.From != "" && p.To != "" && p.From > p.To {
		return p, fmt.Errorf("'from' (%s) is after 'to' (%s)", p.From, p.To)
	}
	return p, nil
}

func parseDateParam(query url.Values, key string) (string, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return "", nil
	}
	if _, err := time.Parse(core.DateLayout, v); err != nil {
		return "", fmt.Errorf("invalid '%s' date %q: want YYYY-MM-DD", key, v)
	}
	return v, nil
}

// ParseTransactionFilter builds a storage filter from list query parameters.
func ParseTransactionFilter(query url.Values) (storage.TransactionFilter, error) {
	rng, err := ParseRangeParams(query)
	if err != nil {
		return storage.TransactionFilter{}, err
	}

	f := storage.TransactionFilter{
		From:       rng.From,
		To:         rng.To,
		CategoryID: strings.TrimSpace(query.Get("category_id")),
		BankID:     strings.TrimSpace(query.Get("bank_id")),
	}

	if v := strings.TrimSpace(query.Get("uncategorized")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid 'uncategorized' value %q", v)
		}
		f.Uncategorized = b
	}

	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, fmt.Errorf("invalid 'limit' value %q", v)
		}
		f.Limit = n
	}

	return f, nil
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
