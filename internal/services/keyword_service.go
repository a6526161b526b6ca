package services

import (
	"context"
	"fmt"
	"log/slog"

	"vibebudget/internal/amqp"
	"vibebudget/internal/classify"
	"vibebudget/internal/core"
	"vibebudget/internal/storage"
)

// KeywordService manages classification overrides and the reclassification
// they trigger.
type KeywordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewKeywordService(repo *storage.SQLiteRepository, amqpClient *amqp.Client) *KeywordService {
	return &KeywordService{storage: repo, amqpClient: amqpClient}
}

// SaveKeyword stores an override and announces it so the worker can revisit
// the user's uncategorized backlog. The save succeeds even when the broker
// is down; reclassification then waits for the next saved keyword or import.
func (s *KeywordService) SaveKeyword(ctx context.Context, k core.UserKeyword) (core.UserKeyword, error) {
	// The category must exist and belong to the user before anything binds
	// to it.
	if _, err := s.storage.GetCategory(ctx, k.UserID, k.CategoryID); err != nil {
		return core.UserKeyword{}, fmt.Errorf("keyword category: %w", err)
	}

	saved, err := s.storage.SaveKeyword(ctx, k)
	if err != nil {
		return core.UserKeyword{}, err
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishKeywordSaved(ctx, saved.UserID, saved.Keyword, saved.CategoryID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish keyword saved message",
				"user_id", saved.UserID,
				"keyword", saved.Keyword,
				"error", err)
		}
	}
	return saved, nil
}

func (s *KeywordService) ListKeywords(ctx context.Context, userID string) ([]core.UserKeyword, error) {
	return s.storage.ListKeywords(ctx, userID)
}

func (s *KeywordService) DeleteKeyword(ctx context.Context, userID, id string) error {
	return s.storage.DeleteKeyword(ctx, userID, id)
}

// Suggest proposes a keyword candidate extracted from a transaction
// description.
func (s *KeywordService) Suggest(description string) string {
	return classify.SuggestKeyword(description)
}

// Reclassify re-runs keyword matching over the user's uncategorized
// transactions and assigns categories to the ones a saved keyword now
// covers. Returns how many transactions were updated. The worker calls this
// on every keyword-saved message.
func (s *KeywordService) Reclassify(ctx context.Context, userID string) (int, error) {
	keywords, err := s.storage.ListKeywords(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list keywords: %w", err)
	}
	if len(keywords) == 0 {
		return 0, nil
	}

	uncategorized, err := s.storage.ListTransactions(ctx, userID, storage.TransactionFilter{Uncategorized: true})
	if err != nil {
		return 0, fmt.Errorf("list uncategorized: %w", err)
	}

	engine := classify.NewEngine(s.storage)
	updated := 0
	for _, tx := range uncategorized {
		match, err := engine.Classify(ctx, userID, tx.Description)
		if err != nil {
			return updated, fmt.Errorf("classify %q: %w", tx.Description, err)
		}
		// Only keyword overrides apply here: these transactions already fell
		// through the rule table once, re-running it would be a no-op.
		if match == nil || match.Tier != classify.TierUserKeyword {
			continue
		}
		if err := s.storage.SetTransactionCategory(ctx, userID, tx.ID, &match.CategoryID); err != nil {
			return updated, fmt.Errorf("set category on %s: %w", tx.ID, err)
		}
		updated++
	}

	if updated > 0 {
		slog.InfoContext(ctx, "Reclassified transactions",
			"user_id", userID,
			"updated", updated)
	}
	return updated, nil
}
