// Package worker runs the background reclassification job: when a user saves
// a keyword override, their uncategorized transactions are revisited so old
// imports pick up the new rule.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"vibebudget/internal/amqp"
	"vibebudget/internal/services"
)

// ReclassifyWorker consumes keyword-saved messages and applies them to the
// user's backlog.
type ReclassifyWorker struct {
	keywords *services.KeywordService
	reports  *services.ReportService
}

// NewReclassifyWorker wires the worker. reports may be nil when the worker
// runs in its own process and holds no report cache.
func NewReclassifyWorker(keywords *services.KeywordService, reports *services.ReportService) *ReclassifyWorker {
	return &ReclassifyWorker{keywords: keywords, reports: reports}
}

// HandleKeywordSaved processes one keyword-saved message. Returning an error
// requeues the message, so only retryable failures propagate.
func (w *ReclassifyWorker) HandleKeywordSaved(ctx context.Context, msg *amqp.KeywordSavedMessage) error {
	slog.InfoContext(ctx, "Processing keyword saved message",
		"user_id", msg.UserID,
		"keyword", msg.Keyword)

	updated, err := w.keywords.Reclassify(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("reclassify for %s: %w", msg.UserID, err)
	}

	if updated > 0 && w.reports != nil {
		w.reports.Invalidate(msg.UserID)
	}

	slog.InfoContext(ctx, "Keyword saved message processed",
		"user_id", msg.UserID,
		"keyword", msg.Keyword,
		"updated", updated)
	return nil
}

// Run consumes the keyword queue until ctx is cancelled.
func (w *ReclassifyWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeKeywordSaved(ctx, w.HandleKeywordSaved)
}
