// Package categorize holds the per-user rules that rename the category of
// transactions whose description contains a given pattern.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

var ErrMissingFields = errors.New("pattern and category are required")

type Rule struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=categorize
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	// ListByUser returns the user's rules oldest first.
	ListByUser(ctx context.Context, userID string) ([]*Rule, error)
	// FindMatch returns the best rule for text, or nil when none matches.
	FindMatch(ctx context.Context, userID, text string) (*Rule, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// AddRule remembers that transactions containing pattern belong to category.
func (s *Service) AddRule(ctx context.Context, userID, pattern, category string) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return nil, ErrMissingFields
	}

	r := &Rule{
		ID:        uuid.New(),
		UserID:    userID,
		Pattern:   pattern,
		Category:  category,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return r, nil
}

func (s *Service) Rules(ctx context.Context, userID string) ([]*Rule, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Suggest returns the category the user's rules give to text.
// Returns empty string if no rule matches.
func (s *Service) Suggest(ctx context.Context, userID, text string) (string, error) {
	r, err := s.repo.FindMatch(ctx, userID, text)
	if err != nil {
		return "", fmt.Errorf("finding match: %w", err)
	}

	if r == nil {
		return "", nil
	}

	return r.Category, nil
}

// Apply returns a copy of txs with the user's rules applied. txs is not modified.
func (s *Service) Apply(ctx context.Context, userID string, txs []finance.Transaction) ([]finance.Transaction, error) {
	out := slices.Clone(txs)

	rules, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return out, fmt.Errorf("listing rules: %w", err)
	}

	if len(rules) == 0 {
		return out, nil
	}

	for i := range out {
		if r := Match(rules, out[i].Name, out[i].Description, out[i].MerchantName); r != nil {
			out[i].Category = r.Category
		}
	}

	return out, nil
}

// Match picks the rule with the longest pattern found in any of texts,
// ignoring case. Between patterns of equal length the newer rule wins.
func Match(rules []*Rule, texts ...string) *Rule {
	lowered := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			lowered = append(lowered, strings.ToLower(t))
		}
	}

	var best *Rule

	for _, r := range rules {
		pattern := strings.ToLower(r.Pattern)
		if pattern == "" || !slices.ContainsFunc(lowered, func(t string) bool { return strings.Contains(t, pattern) }) {
			continue
		}

		if best == nil || len(r.Pattern) > len(best.Pattern) ||
			(len(r.Pattern) == len(best.Pattern) && !r.CreatedAt.Before(best.CreatedAt)) {
			best = r
		}
	}

	return best
}
