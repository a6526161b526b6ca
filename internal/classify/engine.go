// Package classify maps transaction descriptions to categories using two
// ordered precedence tiers: per-user keyword overrides first, then the
// global rule table.
package classify

import (
	"context"
	"fmt"
	"strings"

	"vibebudget/internal/core"
)

// Tier identifies which precedence level produced a match.
type Tier int

const (
	TierUserKeyword Tier = 1
	TierGlobalRule  Tier = 2
)

// Match is a successful classification. Tier-1 matches carry the user's
// CategoryID directly; tier-2 matches carry the rule's category name, which
// the caller resolves to the user's category row.
type Match struct {
	Tier         Tier
	CategoryID   string // set for tier 1
	CategoryName string // set for tier 2
	Keyword      string // the keyword that matched
}

// KeywordStore reads a user's saved classification keywords. The engine is
// agnostic to its backing storage.
type KeywordStore interface {
	ListKeywords(ctx context.Context, userID string) ([]core.UserKeyword, error)
}

// Engine performs two-tier description classification.
type Engine struct {
	keywords KeywordStore
	rules    []Rule
}

func NewEngine(keywords KeywordStore) *Engine {
	return &Engine{keywords: keywords, rules: Rules()}
}

// Classify returns the category match for a description, or nil when neither
// tier matches; an uncategorized transaction is a valid terminal state, not
// an error. User keywords always take precedence over global rules.
func (e *Engine) Classify(ctx context.Context, userID, description string) (*Match, error) {
	if strings.TrimSpace(description) == "" {
		return nil, nil
	}
	lower := strings.ToLower(description)

	if m, err := e.matchUserKeyword(ctx, userID, lower); err != nil {
		return nil, err
	} else if m != nil {
		return m, nil
	}

	return e.matchGlobalRules(lower), nil
}

// matchUserKeyword scans the user's saved keywords (unordered) and returns
// the first case-insensitive substring match.
func (e *Engine) matchUserKeyword(ctx context.Context, userID, lowerDesc string) (*Match, error) {
	if e.keywords == nil || userID == "" {
		return nil, nil
	}
	saved, err := e.keywords.ListKeywords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user keywords: %w", err)
	}
	for _, k := range saved {
		if kw := strings.ToLower(k.Keyword); kw != "" && strings.Contains(lowerDesc, kw) {
			return &Match{Tier: TierUserKeyword, CategoryID: k.CategoryID, Keyword: kw}, nil
		}
	}
	return nil, nil
}

// matchGlobalRules scans the rule table in declaration order and, within a
// rule, the keyword list in order. The first substring hit wins.
func (e *Engine) matchGlobalRules(lowerDesc string) *Match {
	for _, rule := range e.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowerDesc, kw) {
				return &Match{Tier: TierGlobalRule, CategoryName: rule.Category, Keyword: kw}
			}
		}
	}
	return nil
}
