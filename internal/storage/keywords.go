package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vibebudget/internal/core"
)

const keywordColumns = "id, user_id, keyword, category_id, created_at"

// ListKeywords returns the user's classification overrides. Satisfies
// classify.KeywordStore.
func (r *SQLiteRepository) ListKeywords(ctx context.Context, userID string) ([]core.UserKeyword, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+keywordColumns+" FROM user_keywords WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	var out []core.UserKeyword
	for rows.Next() {
		var (
			k         core.UserKeyword
			createdAt string
		)
		if err := rows.Scan(&k.ID, &k.UserID, &k.Keyword, &k.CategoryID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		k.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, k)
	}
	return out, rows.Err()
}

// SaveKeyword stores a classification override. Keywords are kept lowercase;
// saving an existing keyword repoints it at the new category.
func (r *SQLiteRepository) SaveKeyword(ctx context.Context, k core.UserKeyword) (core.UserKeyword, error) {
	k.Keyword = strings.ToLower(strings.TrimSpace(k.Keyword))
	if err := k.Validate(); err != nil {
		return core.UserKeyword{}, err
	}
	k.ID = newID()
	k.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO user_keywords ("+keywordColumns+") VALUES (?, ?, ?, ?, ?) "+
			"ON CONFLICT (user_id, keyword) DO UPDATE SET category_id = excluded.category_id",
		k.ID, k.UserID, k.Keyword, k.CategoryID, k.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.UserKeyword{}, fmt.Errorf("save keyword: %w", err)
	}

	// On conflict the existing row keeps its id; read it back.
	if err := r.db.QueryRowContext(ctx,
		"SELECT id FROM user_keywords WHERE user_id = ? AND keyword = ?",
		k.UserID, k.Keyword).Scan(&k.ID); err != nil {
		return core.UserKeyword{}, fmt.Errorf("read back keyword: %w", err)
	}

	slog.InfoContext(ctx, "Keyword saved",
		"user_id", k.UserID,
		"keyword", k.Keyword,
		"category_id", k.CategoryID)
	return k, nil
}

func (r *SQLiteRepository) DeleteKeyword(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM user_keywords WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete keyword: %w", err)
	}
	return requireAffected(res)
}
