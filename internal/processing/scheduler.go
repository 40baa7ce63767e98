package processing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers the daily and weekly jobs and evicts old job records.
type Scheduler struct {
	service   *Service
	cron      *cron.Cron
	retention time.Duration
}

// NewScheduler parses schedules in the standard five-field cron format. Overlapping runs
// of the same job are skipped.
func NewScheduler(service *Service, retention time.Duration) *Scheduler {
	return &Scheduler{
		service:   service,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		retention: retention,
	}
}

func (s *Scheduler) Start(daily, weekly string) error {
	if _, err := s.cron.AddFunc(daily, func() { s.run(JobDaily) }); err != nil {
		return fmt.Errorf("scheduling daily job %q: %w", daily, err)
	}

	if _, err := s.cron.AddFunc(weekly, func() { s.run(JobWeekly) }); err != nil {
		return fmt.Errorf("scheduling weekly job %q: %w", weekly, err)
	}

	if _, err := s.cron.AddFunc("@hourly", s.evict); err != nil {
		return fmt.Errorf("scheduling eviction: %w", err)
	}

	s.cron.Start()
	slog.Info("processing scheduler started", "daily", daily, "weekly", weekly)

	return nil
}

// Stop prevents new runs and waits for running ones to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}

	slog.Info("processing scheduler stopped")
}

func (s *Scheduler) run(typ JobType) {
	if _, err := s.service.RunJob(context.Background(), typ); err != nil {
		slog.Error("scheduled job failed", "type", typ, "error", err)
	}
}

func (s *Scheduler) evict() {
	n, err := s.service.Evict(s.retention)
	if err != nil {
		slog.Error("failed to evict jobs", "error", err)
		return
	}

	if n > 0 {
		slog.Info("evicted old jobs", "count", n)
	}
}
