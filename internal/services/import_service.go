// Package services orchestrates the ledger's use cases across storage,
// classification and AMQP. HTTP handlers and workers stay thin by calling in
// here.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"vibebudget/internal/amqp"
	"vibebudget/internal/classify"
	"vibebudget/internal/core"
	"vibebudget/internal/ingest"
	"vibebudget/internal/storage"
)

// ImportService turns raw bank statements into stored, classified
// transactions.
type ImportService struct {
	storage    *storage.SQLiteRepository
	engine     *classify.Engine
	amqpClient *amqp.Client
	opts       ingest.Options
}

func NewImportService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, opts ingest.Options) *ImportService {
	return &ImportService{
		storage:    repo,
		engine:     classify.NewEngine(repo),
		amqpClient: amqpClient,
		opts:       opts,
	}
}

// ImportResult is what an import actually did: what landed, how much of it
// got a category, which rows were dropped and why, and which stored rows are
// flagged for manual review.
type ImportResult struct {
	Transactions []core.Transaction
	Categorized  int
	Skipped      []ingest.Skip
	Flagged      []ingest.Skip
	RowCount     int
}

// ImportFile parses an uploaded statement and stores its transactions.
// Partial success is the normal case: unparsable rows are reported in
// Skipped, not fatal. Structural problems (empty file, unsupported format,
// nothing recognizable) fail the whole import.
func (s *ImportService) ImportFile(ctx context.Context, userID, bankName, filename string, r io.Reader) (*ImportResult, error) {
	rows, err := ingest.RowsFromFile(filename, r)
	if err != nil {
		return nil, err
	}
	return s.ImportRows(ctx, userID, bankName, rows)
}

// ImportRows runs the full pipeline over already-extracted rows: parse,
// classify, resolve category and bank references, store atomically, announce.
func (s *ImportService) ImportRows(ctx context.Context, userID, bankName string, rows []ingest.RawRow) (*ImportResult, error) {
	if err := s.storage.SeedCategories(ctx, userID, DefaultCategories()); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	parsed, err := ingest.NewParser(s.opts).Parse(rows)
	if err != nil {
		return nil, err
	}

	var bankID *string
	if bankName != "" {
		id, err := s.storage.EnsureBank(ctx, userID, bankName)
		if err != nil {
			return nil, fmt.Errorf("ensure bank: %w", err)
		}
		bankID = &id
	}

	txs := make([]core.Transaction, 0, len(parsed.Transactions))
	categorized := 0
	for _, pt := range parsed.Transactions {
		categoryID, err := s.classifyDescription(ctx, userID, pt.Description)
		if err != nil {
			return nil, err
		}
		if categoryID != nil {
			categorized++
		}
		txs = append(txs, core.Transaction{
			UserID:      userID,
			BankID:      bankID,
			CategoryID:  categoryID,
			Date:        pt.Date,
			Description: pt.Description,
			Amount:      pt.Amount,
			Currency:    pt.Currency,
		})
	}

	stored, err := s.storage.CreateTransactions(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("store transactions: %w", err)
	}

	result := &ImportResult{
		Transactions: stored,
		Categorized:  categorized,
		Skipped:      parsed.Skipped,
		Flagged:      parsed.Flagged,
		RowCount:     parsed.RowCount,
	}

	for _, skip := range parsed.Skipped {
		slog.WarnContext(ctx, "Row skipped during import",
			"user_id", userID,
			"row", skip.Row,
			"reason", skip.Reason)
	}
	for _, flag := range parsed.Flagged {
		slog.WarnContext(ctx, "Row imported with a defaulted date",
			"user_id", userID,
			"row", flag.Row,
			"reason", flag.Reason)
	}
	slog.InfoContext(ctx, "Import completed",
		"user_id", userID,
		"rows", result.RowCount,
		"imported", len(stored),
		"categorized", categorized,
		"skipped", len(parsed.Skipped),
		"flagged", len(parsed.Flagged))

	// The import already succeeded; a broker outage only mutes the
	// announcement.
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishImportCompleted(ctx, userID, len(stored), categorized, len(parsed.Skipped)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish import completed message",
				"user_id", userID, "error", err)
		}
	}

	return result, nil
}

// classifyDescription resolves a description to the user's category id, or
// nil when neither tier matches.
func (s *ImportService) classifyDescription(ctx context.Context, userID, description string) (*string, error) {
	match, err := s.engine.Classify(ctx, userID, description)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", description, err)
	}
	if match == nil {
		return nil, nil
	}
	if match.Tier == classify.TierUserKeyword {
		id := match.CategoryID
		return &id, nil
	}

	id, err := s.storage.ResolveCategoryID(ctx, userID, match.CategoryName)
	if errors.Is(err, storage.ErrNotFound) {
		// The user may have deleted a seeded category; the transaction
		// simply stays uncategorized.
		slog.WarnContext(ctx, "Rule category not found for user",
			"user_id", userID,
			"category", match.CategoryName)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return &id, nil
}

// DefaultCategories converts the global rule table into seedable category
// rows. Every user starts with these; deleting them is allowed.
func DefaultCategories() []core.Category {
	rules := classify.Rules()
	cats := make([]core.Category, 0, len(rules))
	for _, r := range rules {
		cats = append(cats, core.Category{
			Name:        r.Category,
			Type:        r.Type,
			Icon:        r.Icon,
			Description: r.Description,
			IsSystem:    true,
		})
	}
	return cats
}
