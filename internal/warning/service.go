// Package warning projects a user's current trajectory forward and raises alerts before
// a budget, savings buffer, or debt plan goes wrong.
package warning

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

// DedupWindow is shorter than the signal window: alerts go stale faster.
const DedupWindow = 3 * 24 * time.Hour

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=warning
type LedgerReader interface {
	ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
	ListActiveBudgets(ctx context.Context, userID string) ([]*ledger.Budget, error)
}

type Recorder interface {
	Record(ctx context.Context, userID string, window time.Duration, drafts []insight.Draft) ([]*insight.Insight, error)
}

type System struct {
	ledger    LedgerReader
	insights  Recorder
	now       func() time.Time
	principal PrincipalEstimator
}

// PrincipalEstimator returns how much of a debt payment reduced principal.
type PrincipalEstimator func(e *ledger.Entry) float64

type Option func(*System)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *System) { s.now = now }
}

// WithPrincipalEstimator replaces the default principal heuristic.
func WithPrincipalEstimator(fn PrincipalEstimator) Option {
	return func(s *System) { s.principal = fn }
}

func NewSystem(ledger LedgerReader, insights Recorder, opts ...Option) *System {
	s := &System{
		ledger:    ledger,
		insights:  insights,
		now:       time.Now,
		principal: EstimatePrincipal,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Generate runs every check and records the resulting alerts.
func (s *System) Generate(ctx context.Context, userID string) ([]*insight.Insight, error) {
	drafts, err := s.Detect(ctx, userID)
	if err != nil {
		return nil, err
	}

	alerts, err := s.insights.Record(ctx, userID, DedupWindow, drafts)
	if err != nil {
		return nil, fmt.Errorf("%w: recording alerts: %w", apperr.ErrCalculation, err)
	}

	return alerts, nil
}

// Detect runs every check without persisting anything. Alerts come out in check order:
// budget overruns, savings depletion, debt stagnation.
func (s *System) Detect(ctx context.Context, userID string) ([]insight.Draft, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	now := s.now()
	from := now.AddDate(0, -savingsHistoryMonths, 0)

	entries, err := s.ledger.ListEntries(ctx, ledger.ListFilter{UserID: userID, From: &from, To: &now})
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %w", apperr.ErrCalculation, err)
	}

	budgets, err := s.ledger.ListActiveBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing budgets: %w", apperr.ErrCalculation, err)
	}

	var drafts []insight.Draft

	drafts = append(drafts, budgetOverruns(now, budgets, entries)...)

	if d, ok := savingsDepletion(now, entries); ok {
		drafts = append(drafts, d)
	}

	if d, ok := debtStagnation(now, entries, s.principal); ok {
		drafts = append(drafts, d)
	}

	return drafts, nil
}
