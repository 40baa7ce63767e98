package processing

import (
	"sort"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

// JobStore keeps job records. Implementations must be safe for concurrent use.
type JobStore interface {
	Record(job *Job) error
	// Get returns the job or apperr.ErrNotFound.
	Get(id string) (*Job, error)
	List() ([]*Job, error)
	// Evict drops jobs started before cutoff and reports how many were removed.
	Evict(cutoff time.Time) (int, error)
}

// MemoryJobStore is a JobStore that lives for the life of the process. It stores and
// hands out copies, so callers never share a job with it.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*Job)}
}

func (s *MemoryJobStore) Record(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job.Clone()

	return nil
}

func (s *MemoryJobStore) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return job.Clone(), nil
}

// List returns every job, newest first.
func (s *MemoryJobStore) List() ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	return out, nil
}

func (s *MemoryJobStore) Evict(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int

	for id, job := range s.jobs {
		if job.StartedAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}

	return n, nil
}
