package api

import "sync"

// SavedStore tracks which properties the caller has bookmarked. The
// in-memory implementation is process-scoped; durable per-user storage is
// out of scope for this service.
type SavedStore interface {
	// Toggle flips the saved state of a property and returns the new state.
	Toggle(zpid int64) bool

	// Saved returns the saved-state lookup for the given ids.
	Saved(zpids []int64) map[int64]bool

	// All returns every saved property id.
	All() []int64
}

type memorySavedStore struct {
	mu    sync.RWMutex
	zpids map[int64]struct{}
}

func NewMemorySavedStore() SavedStore {
	return &memorySavedStore{zpids: make(map[int64]struct{})}
}

func (s *memorySavedStore) Toggle(zpid int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zpids[zpid]; ok {
		delete(s.zpids, zpid)
		return false
	}
	s.zpids[zpid] = struct{}{}
	return true
}

func (s *memorySavedStore) Saved(zpids []int64) map[int64]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved := make(map[int64]bool, len(zpids))
	for _, zpid := range zpids {
		_, saved[zpid] = s.zpids[zpid]
	}
	return saved
}

func (s *memorySavedStore) All() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]int64, 0, len(s.zpids))
	for zpid := range s.zpids {
		all = append(all, zpid)
	}
	return all
}
