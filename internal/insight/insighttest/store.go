// Package insighttest provides an in-memory insight repository for tests of the
// engines that raise insights.
package insighttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
)

// Store keeps insights in memory. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	insights []*insight.Insight

	// BeforeCreate, when set, runs before each insert with the lock released.
	BeforeCreate func()
}

func NewStore() *Store {
	return &Store{}
}

// Add seeds an insight.
func (s *Store) Add(in *insight.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insights = append(s.insights, in)
}

// All returns a copy of every stored insight in insertion order.
func (s *Store) All() []*insight.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*insight.Insight, len(s.insights))
	copy(out, s.insights)

	return out
}

// Active returns the active insights of the given type.
func (s *Store) Active(typ insight.Type) []*insight.Insight {
	var out []*insight.Insight

	for _, in := range s.All() {
		if in.Type == typ && in.Status == insight.StatusActive {
			out = append(out, in)
		}
	}

	return out
}

func (s *Store) FindActiveSince(_ context.Context, userID string, typ insight.Type, since time.Time) (*insight.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *insight.Insight

	for _, in := range s.insights {
		if in.UserID != userID || in.Type != typ || in.Status != insight.StatusActive || in.CreatedAt.Before(since) {
			continue
		}

		if found == nil || in.CreatedAt.After(found.CreatedAt) {
			found = in
		}
	}

	if found == nil {
		return nil, apperr.ErrNotFound
	}

	return found, nil
}

func (s *Store) CreateInsight(_ context.Context, in *insight.Insight) error {
	if s.BeforeCreate != nil {
		s.BeforeCreate()
	}

	s.Add(in)

	return nil
}

func (s *Store) GetInsight(_ context.Context, userID string, id uuid.UUID) (*insight.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range s.insights {
		if in.ID == id && in.UserID == userID {
			return in, nil
		}
	}

	return nil, apperr.ErrNotFound
}

func (s *Store) UpdateInsight(_ context.Context, in *insight.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.insights {
		if existing.ID == in.ID && existing.UserID == in.UserID {
			s.insights[i] = in
			return nil
		}
	}

	return apperr.ErrNotFound
}

func (s *Store) ListInsights(_ context.Context, filter insight.ListFilter) ([]*insight.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*insight.Insight

	for _, in := range s.insights {
		if in.UserID != filter.UserID {
			continue
		}

		if filter.Status != nil && in.Status != *filter.Status {
			continue
		}

		if filter.Type != nil && in.Type != *filter.Type {
			continue
		}

		out = append(out, in)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}
