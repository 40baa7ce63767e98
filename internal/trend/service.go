package trend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=trend
type LedgerReader interface {
	ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
}

type Repository interface {
	CreatePeriods(ctx context.Context, periods []*Period) error
	ListPeriods(ctx context.Context, userID string, periodType PeriodType, limit int) ([]*Period, error)
}

type Engine struct {
	ledger LedgerReader
	repo   Repository
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(ledger LedgerReader, repo Repository, opts ...Option) *Engine {
	e := &Engine{ledger: ledger, repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type granularity struct {
	periodType PeriodType
	count      int
	lookback   int
	anchor     func(time.Time) time.Time
	step       func(t time.Time, n int) time.Time
}

var granularities = []granularity{
	{
		periodType: Daily,
		count:      30,
		lookback:   3,
		anchor:     startOfDay,
		step:       func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) },
	},
	{
		periodType: Weekly,
		count:      12,
		lookback:   3,
		anchor:     startOfWeek,
		step:       func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) },
	},
	{
		periodType: Monthly,
		count:      12,
		lookback:   6,
		anchor:     startOfMonth,
		step:       func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) },
	},
}

// Generate recomputes every daily, weekly and monthly period in the look-back windows
// from a single ledger read and appends them. Earlier periods used for comparison are
// recomputed from the same read, never loaded from stored rows.
func (e *Engine) Generate(ctx context.Context, userID string) ([]*Period, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	now := e.now()

	from := now
	for _, g := range granularities {
		if first := g.step(g.anchor(now), -(g.count - 1 + g.lookback)); first.Before(from) {
			from = first
		}
	}

	entries, err := e.ledger.ListEntries(ctx, ledger.ListFilter{UserID: userID, From: &from, To: &now})
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %w", apperr.ErrCalculation, err)
	}

	var periods []*Period

	for _, g := range granularities {
		periods = append(periods, e.build(userID, g, entries, now)...)
	}

	if err := e.repo.CreatePeriods(ctx, periods); err != nil {
		return nil, fmt.Errorf("%w: saving periods: %w", apperr.ErrCalculation, err)
	}

	return periods, nil
}

func (e *Engine) build(userID string, g granularity, entries []*ledger.Entry, now time.Time) []*Period {
	total := g.count + g.lookback
	first := g.step(g.anchor(now), -(total - 1))

	starts := make([]time.Time, total+1)
	for i := range starts {
		starts[i] = g.step(first, i)
	}

	series := make([]metrics.PeriodMetrics, total)
	for i := range series {
		series[i] = metrics.Aggregate(metrics.Between(entries, starts[i], starts[i+1]))
	}

	periods := make([]*Period, 0, g.count)

	for i := g.lookback; i < total; i++ {
		cur := series[i]

		cmp := Comparisons{
			VsPreviousPeriod: metrics.PercentageChange(cur, series[i-1]),
			Vs3MonthAverage:  metrics.PercentageChange(cur, metrics.Average(series[i-3:i])),
		}
		if g.periodType == Monthly {
			cmp.Vs6MonthAverage = metrics.PercentageChange(cur, metrics.Average(series[i-6:i]))
		}

		periods = append(periods, &Period{
			ID:           uuid.New(),
			UserID:       userID,
			PeriodType:   g.periodType,
			PeriodStart:  starts[i],
			PeriodEnd:    starts[i+1],
			Metrics:      cur,
			Comparisons:  cmp,
			CalculatedAt: now,
		})
	}

	return periods
}

// List returns stored periods newest first. An empty periodType lists every type.
func (e *Engine) List(ctx context.Context, userID string, periodType PeriodType, limit int) ([]*Period, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	if periodType != "" && !periodType.Valid() {
		return nil, fmt.Errorf("%w: unknown period type %q", apperr.ErrValidation, periodType)
	}

	if limit <= 0 {
		limit = 30
	}

	return e.repo.ListPeriods(ctx, userID, periodType, limit)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
