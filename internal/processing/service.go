// Package processing runs the analysis generators for every user in batch jobs.
package processing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=processing
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

type Runner interface {
	Run(ctx context.Context, userID string) UserResult
}

type Service struct {
	users       UserLister
	runner      Runner
	jobs        JobStore
	concurrency int
	userTimeout time.Duration
	metrics     *Metrics
	now         func() time.Time
}

type Option func(*Service)

// WithConcurrency bounds how many users are processed at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithUserTimeout bounds each user's pipeline run. Zero disables the bound.
func WithUserTimeout(d time.Duration) Option {
	return func(s *Service) { s.userTimeout = d }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users UserLister, runner Runner, jobs JobStore, opts ...Option) *Service {
	s := &Service{
		users:       users,
		runner:      runner,
		jobs:        jobs,
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RunJob processes every user and returns the finished job. Per-user failures are
// recorded in the job's results and never abort the batch; an error is returned only
// when the user list cannot be loaded, in which case the job is marked failed.
func (s *Service) RunJob(ctx context.Context, typ JobType) (*Job, error) {
	job := &Job{
		ID:        fmt.Sprintf("%s-%s", typ, uuid.NewString()),
		Type:      typ,
		Status:    JobPending,
		StartedAt: s.now(),
	}
	s.record(job)

	job.Status = JobRunning
	s.record(job)
	s.metrics.jobStarted()

	users, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.finish(job, JobFailed, err.Error())
		slog.Error("processing job failed", "job_id", job.ID, "type", typ, "error", err)

		return job, fmt.Errorf("listing users: %w", err)
	}

	slog.Info("starting processing job", "job_id", job.ID, "type", typ, "users", len(users))

	results := make([]UserResult, len(users))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, userID := range users {
		g.Go(func() error {
			results[i] = s.ProcessUser(ctx, userID)
			return nil
		})
	}

	_ = g.Wait()

	job.Results = results
	s.finish(job, JobCompleted, "")

	var failed int

	for _, r := range results {
		if !r.Success {
			failed++
		}
	}

	slog.Info("processing job completed", "job_id", job.ID, "type", typ, "succeeded", len(results)-failed, "failed", failed)

	return job, nil
}

// ProcessUser runs the pipeline for a single user.
func (s *Service) ProcessUser(ctx context.Context, userID string) UserResult {
	if s.userTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.userTimeout)
		defer cancel()
	}

	return s.runner.Run(ctx, userID)
}

func (s *Service) Job(id string) (*Job, error) {
	return s.jobs.Get(id)
}

func (s *Service) Jobs() ([]*Job, error) {
	return s.jobs.List()
}

// Statistics summarizes the jobs started in the last 24 hours.
func (s *Service) Statistics() (*Statistics, error) {
	jobs, err := s.jobs.List()
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	cutoff := s.now().Add(-24 * time.Hour)
	stats := &Statistics{}

	var total time.Duration

	for _, job := range jobs {
		if !job.StartedAt.After(cutoff) {
			continue
		}

		stats.TotalJobs++

		switch job.Status {
		case JobCompleted:
			stats.SuccessfulJobs++
		case JobFailed:
			stats.FailedJobs++
		}

		for _, r := range job.Results {
			total += r.Duration

			if r.Success {
				stats.TotalUsersProcessed++
			}
		}
	}

	if stats.TotalJobs > 0 {
		stats.AverageDuration = total / time.Duration(stats.TotalJobs)
	}

	return stats, nil
}

// Evict drops job records started more than retention ago.
func (s *Service) Evict(retention time.Duration) (int, error) {
	return s.jobs.Evict(s.now().Add(-retention))
}

func (s *Service) finish(job *Job, status JobStatus, msg string) {
	completed := s.now()

	job.Status = status
	job.Error = msg
	job.CompletedAt = &completed

	s.record(job)
	s.metrics.jobFinished(job)
}

func (s *Service) record(job *Job) {
	if err := s.jobs.Record(job); err != nil {
		slog.Error("failed to record job", "job_id", job.ID, "error", err)
	}
}
