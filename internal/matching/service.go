// Package matching assigns categories to ledger entries from learned description rules.
package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

// minPatternLength keeps rules from matching almost every description.
const minPatternLength = 3

// Rule maps descriptions containing Pattern, ignoring case, to a category.
type Rule struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	Pattern    string    `json:"pattern"`
	CategoryID uuid.UUID `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the longest matching rule, or nil when none match.
	FindMatch(ctx context.Context, userID, description string) (*uuid.UUID, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context, userID string) ([]*Rule, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Suggest returns the category for description, or nil when no rule matches.
func (s *Service) Suggest(ctx context.Context, userID, description string) (*uuid.UUID, error) {
	return s.repo.FindMatch(ctx, userID, description)
}

// Learn stores a new rule. Newer rules win over older ones with the same pattern.
func (s *Service) Learn(ctx context.Context, userID, pattern string, categoryID uuid.UUID) (*Rule, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	pattern = strings.TrimSpace(pattern)
	if len([]rune(pattern)) < minPatternLength {
		return nil, fmt.Errorf("%w: pattern must have at least %d characters", apperr.ErrValidation, minPatternLength)
	}

	if categoryID == uuid.Nil {
		return nil, fmt.Errorf("%w: category is required", apperr.ErrValidation)
	}

	r := &Rule{
		ID:         uuid.New(),
		UserID:     userID,
		Pattern:    pattern,
		CategoryID: categoryID,
		CreatedAt:  s.now(),
	}

	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return r, nil
}

func (s *Service) Rules(ctx context.Context, userID string) ([]*Rule, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	return s.repo.ListRules(ctx, userID)
}

// Categorize fills in the category of every uncategorized entry a rule matches and
// reports how many were filled. Entries that already carry a category are left alone.
func (s *Service) Categorize(ctx context.Context, userID string, params []ledger.CreateParams) (int, error) {
	var matched int

	for i := range params {
		if params[i].CategoryID != nil {
			continue
		}

		category, err := s.repo.FindMatch(ctx, userID, params[i].Description)
		if err != nil {
			return matched, fmt.Errorf("matching %q: %w", params[i].Description, err)
		}

		if category == nil {
			continue
		}

		params[i].CategoryID = category
		matched++
	}

	return matched, nil
}
