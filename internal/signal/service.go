// Package signal detects backward-looking patterns in a user's ledger and raises
// them as insights.
package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/metrics"
)

// DedupWindow is how long an active insight suppresses a new one of the same type.
const DedupWindow = 7 * 24 * time.Hour

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=signal
type LedgerReader interface {
	ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error)
	LatestEntry(ctx context.Context, userID string) (*ledger.Entry, error)
}

type Recorder interface {
	Record(ctx context.Context, userID string, window time.Duration, drafts []insight.Draft) ([]*insight.Insight, error)
}

type Engine struct {
	ledger   LedgerReader
	insights Recorder
	now      func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(ledger LedgerReader, insights Recorder, opts ...Option) *Engine {
	e := &Engine{ledger: ledger, insights: insights, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Generate evaluates every rule and records the ones that fire. The result holds one
// insight per fired rule: new ones, or the active duplicate that suppressed it.
func (e *Engine) Generate(ctx context.Context, userID string) ([]*insight.Insight, error) {
	drafts, err := e.Detect(ctx, userID)
	if err != nil {
		return nil, err
	}

	insights, err := e.insights.Record(ctx, userID, DedupWindow, drafts)
	if err != nil {
		return nil, fmt.Errorf("%w: recording signals: %w", apperr.ErrCalculation, err)
	}

	return insights, nil
}

// Detect evaluates the rules without persisting anything.
func (e *Engine) Detect(ctx context.Context, userID string) ([]insight.Draft, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	now := e.now()
	from := now.AddDate(0, 0, -historicalDays)

	entries, err := e.ledger.ListEntries(ctx, ledger.ListFilter{UserID: userID, From: &from, To: &now})
	if err != nil {
		return nil, fmt.Errorf("%w: listing entries: %w", apperr.ErrCalculation, err)
	}

	latest, err := e.ledger.LatestEntry(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: loading latest entry: %w", apperr.ErrCalculation, err)
	}

	currentStart := now.AddDate(0, 0, -currentDays)

	w := &windows{
		now:        now,
		current:    metrics.Since(entries, currentStart),
		comparison: metrics.Between(entries, now.AddDate(0, 0, -comparisonDays), currentStart),
		historical: entries,
		latest:     latest,
	}

	return evaluate(w), nil
}
