package services

import "sync"

// defaultDedupCapacity bounds the registry; oldest entries are evicted
// first once the limit is reached.
const defaultDedupCapacity = 1000

// DedupService is a bounded, insertion-ordered set of already-handled
// order ids. Both the push path and the poller consult it before
// enqueueing, so the same order arriving through both never prints twice.
// Ids are marked at enqueue time, not at confirmed-print time: a job that
// fails to print stays marked, trading possible silent drops for no
// reprint storms.
type DedupService struct {
	mu       sync.Mutex
	ids      map[string]struct{}
	order    []string
	capacity int
}

// NewDedupService creates a registry with the default capacity.
func NewDedupService() *DedupService {
	return NewDedupServiceWithCapacity(defaultDedupCapacity)
}

// NewDedupServiceWithCapacity creates a registry bounded to n entries.
func NewDedupServiceWithCapacity(n int) *DedupService {
	if n < 1 {
		n = 1
	}
	return &DedupService{
		ids:      make(map[string]struct{}),
		capacity: n,
	}
}

// Seen reports whether the id has been marked.
func (s *DedupService) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Mark records an id, evicting the oldest entry when the registry is full.
func (s *DedupService) Mark(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark(id)
}

// MarkAll records every id in the slice.
func (s *DedupService) MarkAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if id != "" {
			s.mark(id)
		}
	}
}

// Duplicate reports whether a job carrying these ids has already been
// handled. A job is a duplicate only when every id is marked; any unmarked
// id makes it new.
func (s *DedupService) Duplicate(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of marked ids.
func (s *DedupService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// mark must be called with the mutex held.
func (s *DedupService) mark(id string) {
	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
}
