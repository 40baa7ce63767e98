package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/health"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/trend"
)

//go:generate mockgen -source=pipeline.go -destination=pipeline_mock.go -package=processing
type HealthCalculator interface {
	Calculate(ctx context.Context, userID string) (*health.Result, error)
}

type TrendGenerator interface {
	Generate(ctx context.Context, userID string) ([]*trend.Period, error)
}

// InsightGenerator is satisfied by both the signal engine and the warning system.
type InsightGenerator interface {
	Generate(ctx context.Context, userID string) ([]*insight.Insight, error)
}

type step struct {
	name string
	run  func(ctx context.Context, userID string) error
}

// Pipeline runs every generator for one user. Steps are independent: a failing step is
// recorded and the rest still run.
type Pipeline struct {
	steps   []step
	metrics *Metrics
	now     func() time.Time
}

type PipelineOption func(*Pipeline)

func WithPipelineMetrics(m *Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(h HealthCalculator, t TrendGenerator, signals, alerts InsightGenerator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		steps: []step{
			{name: "health", run: func(ctx context.Context, userID string) error {
				_, err := h.Calculate(ctx, userID)
				return err
			}},
			{name: "trends", run: func(ctx context.Context, userID string) error {
				_, err := t.Generate(ctx, userID)
				return err
			}},
			{name: "signals", run: func(ctx context.Context, userID string) error {
				_, err := signals.Generate(ctx, userID)
				return err
			}},
			{name: "alerts", run: func(ctx context.Context, userID string) error {
				_, err := alerts.Generate(ctx, userID)
				return err
			}},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) Run(ctx context.Context, userID string) UserResult {
	started := p.now()
	result := UserResult{UserID: userID, Steps: make([]StepResult, 0, len(p.steps))}

	var errs []error

	for _, s := range p.steps {
		stepStart := p.now()
		err := s.run(ctx, userID)
		d := p.now().Sub(stepStart)

		p.metrics.observeStep(s.name, err, d)

		sr := StepResult{Step: s.name, Duration: d}
		if err != nil {
			slog.Error("pipeline step failed", "user_id", userID, "step", s.name, "error", err)

			sr.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}

		result.Steps = append(result.Steps, sr)
	}

	if err := errors.Join(errs...); err != nil {
		result.Error = err.Error()
	}

	result.Success = len(errs) == 0
	result.Timestamp = p.now()
	result.Duration = result.Timestamp.Sub(started)

	p.metrics.observeUser(result.Success)

	return result
}
