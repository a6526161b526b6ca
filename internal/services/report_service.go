package services

import (
	"context"
	"fmt"
	"time"

	"vibebudget/internal/cache"
	"vibebudget/internal/report"
	"vibebudget/internal/storage"
)

const (
	reportCacheSize = 256
	reportCacheTTL  = 5 * time.Minute
)

// ReportService computes pivot and summary reports with a short-lived LRU
// cache in front. Reports are pure derivations of the transaction table, so
// a write only needs to drop the writer's cache entries.
type ReportService struct {
	storage   *storage.SQLiteRepository
	pivots    *cache.LRUCache[report.Pivot]
	summaries *cache.LRUCache[report.Summary]
}

func NewReportService(repo *storage.SQLiteRepository, manager *cache.Manager) *ReportService {
	s := &ReportService{
		storage:   repo,
		pivots:    cache.NewLRUCache[report.Pivot](reportCacheSize, reportCacheTTL),
		summaries: cache.NewLRUCache[report.Summary](reportCacheSize, reportCacheTTL),
	}
	if manager != nil {
		manager.Register(s.pivots)
		manager.Register(s.summaries)
	}
	return s
}

// Pivot returns the user's category × month expense matrix for the given
// inclusive date range. Empty bounds mean "all time".
func (s *ReportService) Pivot(ctx context.Context, userID, from, to string) (report.Pivot, error) {
	key := cacheKey(userID, "pivot", from, to)
	if p, ok := s.pivots.Get(key); ok {
		return p, nil
	}

	txs, err := s.storage.ListTransactions(ctx, userID, storage.TransactionFilter{From: from, To: to})
	if err != nil {
		return report.Pivot{}, fmt.Errorf("load transactions: %w", err)
	}
	cats, err := s.storage.ListCategories(ctx, userID)
	if err != nil {
		return report.Pivot{}, fmt.Errorf("load categories: %w", err)
	}

	p := report.BuildPivot(txs, cats)
	s.pivots.Set(key, p)
	return p, nil
}

// Stats returns the headline totals for the given inclusive date range.
func (s *ReportService) Stats(ctx context.Context, userID, from, to string) (report.Summary, error) {
	key := cacheKey(userID, "stats", from, to)
	if sum, ok := s.summaries.Get(key); ok {
		return sum, nil
	}

	txs, err := s.storage.ListTransactions(ctx, userID, storage.TransactionFilter{From: from, To: to})
	if err != nil {
		return report.Summary{}, fmt.Errorf("load transactions: %w", err)
	}

	sum := report.Summarize(txs)
	s.summaries.Set(key, sum)
	return sum, nil
}

// Invalidate drops the user's cached reports. Call after anything that
// changes their transactions or categories.
func (s *ReportService) Invalidate(userID string) {
	s.pivots.DeletePrefix(userID + "|")
	s.summaries.DeletePrefix(userID + "|")
}

func cacheKey(userID, kind, from, to string) string {
	return userID + "|" + kind + "|" + from + "|" + to
}
