package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=insight
type Repository interface {
	// FindActiveSince returns the newest active insight of the given type created at or
	// after since, or apperr.ErrNotFound.
	FindActiveSince(ctx context.Context, userID string, typ Type, since time.Time) (*Insight, error)
	CreateInsight(ctx context.Context, in *Insight) error
	GetInsight(ctx context.Context, userID string, id uuid.UUID) (*Insight, error)
	UpdateInsight(ctx context.Context, in *Insight) error
	ListInsights(ctx context.Context, filter ListFilter) ([]*Insight, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source.
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

type ListFilter struct {
	UserID string
	Status *Status
	Type   *Type
	Limit  int
}

// Record persists each draft unless an active insight of the same type was created for
// the user within window. Suppressed drafts resolve to the existing insight, which is
// returned once however many drafts it absorbed.
//
// The check and the insert are separate statements, so two concurrent calls for the same
// user can both insert.
func (s *Service) Record(ctx context.Context, userID string, window time.Duration, drafts []Draft) ([]*Insight, error) {
	now := s.now()
	since := now.Add(-window)

	out := make([]*Insight, 0, len(drafts))
	seen := make(map[uuid.UUID]struct{}, len(drafts))

	for _, d := range drafts {
		existing, err := s.repo.FindActiveSince(ctx, userID, d.Type, since)
		if err == nil {
			slog.Debug("duplicate insight suppressed", "user_id", userID, "type", d.Type, "existing_id", existing.ID)

			if _, ok := seen[existing.ID]; !ok {
				seen[existing.ID] = struct{}{}
				out = append(out, existing)
			}

			continue
		}

		if !errors.Is(err, apperr.ErrNotFound) {
			return out, fmt.Errorf("checking duplicates for %s: %w", d.Type, err)
		}

		in := &Insight{
			ID:             uuid.New(),
			UserID:         userID,
			Type:           d.Type,
			Severity:       d.Severity,
			Title:          d.Title,
			Explanation:    d.Explanation,
			SupportingData: d.SupportingData,
			Status:         StatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := s.repo.CreateInsight(ctx, in); err != nil {
			return out, fmt.Errorf("creating %s insight: %w", d.Type, err)
		}

		seen[in.ID] = struct{}{}
		out = append(out, in)
	}

	return out, nil
}

// Resolve moves an insight to resolved or dismissed. Notes are kept under
// supporting data's resolutionNotes key.
func (s *Service) Resolve(ctx context.Context, userID string, id uuid.UUID, action Status, notes string) (*Insight, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: insight id is required", apperr.ErrValidation)
	}

	if action != StatusResolved && action != StatusDismissed {
		return nil, fmt.Errorf("%w: action must be resolved or dismissed", apperr.ErrValidation)
	}

	in, err := s.repo.GetInsight(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()

	in.Status = action
	in.ResolvedAt = &now
	in.UpdatedAt = now

	if notes != "" {
		if in.SupportingData == nil {
			in.SupportingData = make(map[string]any, 1)
		}

		in.SupportingData["resolutionNotes"] = notes
	}

	if err := s.repo.UpdateInsight(ctx, in); err != nil {
		return nil, fmt.Errorf("updating insight: %w", err)
	}

	return in, nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Insight, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: insight id is required", apperr.ErrValidation)
	}

	return s.repo.GetInsight(ctx, userID, id)
}

// List returns insights ordered by severity, most severe first, then newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Insight, error) {
	if filter.UserID == "" {
		return nil, apperr.ErrUnauthorized
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	return s.repo.ListInsights(ctx, filter)
}
