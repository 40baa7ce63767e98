package health

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=health
type LedgerReader interface {
	ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
	ListActiveGoals(ctx context.Context, userID string) ([]*ledger.Goal, error)
}

type Repository interface {
	// LatestSnapshot returns apperr.ErrNotFound when the user has no snapshot yet.
	LatestSnapshot(ctx context.Context, userID string) (*Snapshot, error)
	CreateSnapshot(ctx context.Context, s *Snapshot) error
	ListSnapshots(ctx context.Context, userID string, limit int) ([]*Snapshot, error)
}

// budgetAdherenceScore is fixed until budget-period reconciliation exists.
const budgetAdherenceScore = 100

type Calculator struct {
	ledger LedgerReader
	repo   Repository
	now    func() time.Time
}

type Option func(*Calculator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

func NewCalculator(ledger LedgerReader, repo Repository, opts ...Option) *Calculator {
	c := &Calculator{ledger: ledger, repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Calculate scores the user's last 90 days and appends a snapshot.
func (c *Calculator) Calculate(ctx context.Context, userID string) (*Result, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	now := c.now()
	from := now.AddDate(0, 0, -90)

	entries, err := c.ledger.ListEntries(ctx, ledger.ListFilter{UserID: userID, From: &from, To: &now})
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %w", apperr.ErrCalculation, err)
	}

	goals, err := c.ledger.ListActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing goals: %w", apperr.ErrCalculation, err)
	}

	recent := metrics.Since(entries, now.AddDate(0, 0, -30))

	components := Components{
		SavingsRate:       metrics.Clamp(metrics.Aggregate(recent).SavingsRate+50, 0, 100),
		BudgetAdherence:   budgetAdherenceScore,
		IncomeStability:   stability(metrics.MonthlyIncome(entries), 50),
		ExpenseVolatility: stability(metrics.DailyExpenses(recent), 100),
		GoalProgress:      goalProgress(goals),
	}

	var previous *int

	last, err := c.repo.LatestSnapshot(ctx, userID)
	switch {
	case err == nil:
		previous = &last.Score
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("%w: loading previous snapshot: %w", apperr.ErrCalculation, err)
	}

	score := Score(components)
	trend := Direction(score, previous)

	snapshot := &Snapshot{
		ID:             uuid.New(),
		UserID:         userID,
		Score:          score,
		HealthState:    StateFor(score, trend),
		TrendDirection: trend,
		Components:     components,
		CalculatedAt:   now,
	}

	if err := c.repo.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("%w: saving snapshot: %w", apperr.ErrCalculation, err)
	}

	return &Result{
		Score:          snapshot.Score,
		HealthState:    snapshot.HealthState,
		TrendDirection: snapshot.TrendDirection,
		Components:     snapshot.Components,
		PreviousScore:  previous,
	}, nil
}

// History returns the most recent snapshots, newest first.
func (c *Calculator) History(ctx context.Context, userID string, limit int) ([]*Snapshot, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	if limit <= 0 {
		limit = 30
	}

	return c.repo.ListSnapshots(ctx, userID, limit)
}

// stability scores how steady a series is. Fewer than two points count as perfectly steady.
func stability(series []float64, factor float64) float64 {
	if len(series) < 2 {
		return 100
	}

	return metrics.Clamp(100-metrics.CoefficientOfVariation(series)*factor, 0, 100)
}

func goalProgress(goals []*ledger.Goal) float64 {
	if len(goals) == 0 {
		return 100
	}

	var total float64

	for _, g := range goals {
		target := g.TargetAmount.InexactFloat64()
		if target <= 0 {
			continue
		}

		total += metrics.Clamp(g.CurrentAmount.InexactFloat64()/target, 0, 1) * 100
	}

	return math.Min(100, total/float64(len(goals)))
}
