// Package task turns insights into follow-up work and tracks it to completion.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=task
type Repository interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, userID string, id uuid.UUID) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, userID string, id uuid.UUID) error
	ListTasks(ctx context.Context, filter ListFilter) ([]*Task, error)
}

// InsightReader returns an insight owned by userID, or apperr.ErrNotFound.
type InsightReader interface {
	Get(ctx context.Context, userID string, id uuid.UUID) (*insight.Insight, error)
}

type Service struct {
	repo     Repository
	insights InsightReader
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, insights InsightReader, opts ...Option) *Service {
	s := &Service{repo: repo, insights: insights, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FromInsightParams overrides the generated task fields. Zero values keep the defaults.
type FromInsightParams struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
}

type ListFilter struct {
	UserID    string
	Status    *Status
	Priority  *Priority
	Type      *Type
	DueBefore *time.Time
	DueAfter  *time.Time
	Limit     int
}

// CreateFromInsight creates an open task from one of the user's insights. The insight
// itself is left untouched.
func (s *Service) CreateFromInsight(ctx context.Context, userID string, insightID uuid.UUID, params FromInsightParams) (*Task, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	if insightID == uuid.Nil {
		return nil, fmt.Errorf("%w: insight id is required", apperr.ErrValidation)
	}

	if params.Priority != "" && !params.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, params.Priority)
	}

	in, err := s.insights.Get(ctx, userID, insightID)
	if err != nil {
		return nil, err
	}

	tpl := templateFor(in.Type)

	title := params.Title
	if title == "" {
		title = "Review: " + in.Title
	}

	base := params.Description
	if base == "" {
		base = in.Explanation
	}

	priority := params.Priority
	if priority == "" {
		priority = tpl.priority
	}

	if priority == "" {
		priority = PriorityFor(in.Severity)
	}

	now := s.now()
	t := &Task{
		ID:              uuid.New(),
		UserID:          userID,
		SourceInsightID: &in.ID,
		Title:           title,
		Description:     tpl.describe(base),
		Type:            tpl.typ,
		Priority:        priority,
		Status:          StatusOpen,
		DueDate:         params.DueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	return t, nil
}

// List returns tasks by priority, most urgent first, then by due date and newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Task, error) {
	if filter.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}

	return s.repo.ListTasks(ctx, filter)
}

// UpdateStatus moves a task to status. Completing a task stamps CompletedAt; notes are
// appended to the description.
func (s *Service) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status Status, notes string) (*Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}

	t, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()

	t.Status = status
	t.UpdatedAt = now

	if status == StatusCompleted {
		t.CompletedAt = &now
	}

	if notes != "" {
		if t.Description != "" {
			t.Description += "\n\nNotes: " + notes
		} else {
			t.Description = "Notes: " + notes
		}
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return s.repo.DeleteTask(ctx, userID, id)
}

// Statistics counts the user's tasks by status, priority and type. A task is overdue
// when its due date has passed and it is not completed.
func (s *Service) Statistics(ctx context.Context, userID string) (*Statistics, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthorized
	}

	tasks, err := s.repo.ListTasks(ctx, ListFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	now := s.now()
	stats := &Statistics{
		Total:      len(tasks),
		ByPriority: make(map[Priority]int),
		ByType:     make(map[Type]int),
	}

	for _, t := range tasks {
		switch t.Status {
		case StatusOpen:
			stats.Open++
		case StatusInProgress:
			stats.InProgress++
		case StatusCompleted:
			stats.Completed++
		}

		stats.ByPriority[t.Priority]++
		stats.ByType[t.Type]++

		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted {
			stats.Overdue++
		}
	}

	return stats, nil
}
