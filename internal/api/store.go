package api

import (
	"sync"

	"github.com/samcharles93/matbench/internal/bench"
)

// RunStore keeps completed reports in memory, in creation order. Nothing
// is persisted across restarts.
type RunStore struct {
	mu      sync.Mutex
	order   []string
	reports map[string]*bench.Report
}

func NewRunStore() *RunStore {
	return &RunStore{
		reports: make(map[string]*bench.Report),
	}
}

func (s *RunStore) Put(r *bench.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r
}

func (s *RunStore) Get(id string) (*bench.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *RunStore) List() []*bench.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*bench.Report, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.reports[id])
	}
	return out
}

func (s *RunStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return false
	}
	delete(s.reports, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}
