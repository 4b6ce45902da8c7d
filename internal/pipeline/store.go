package pipeline

import (
	"sync/atomic"

	"github.com/couchcryptid/parking-schedule-service/internal/domain"
)

// Store holds the active snapshot. Readers always see a complete snapshot;
// a refresh replaces it in a single atomic swap.
type Store struct {
	current atomic.Pointer[domain.Snapshot]
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil before the first load.
func (s *Store) Current() *domain.Snapshot {
	return s.current.Load()
}

// Swap installs snap and returns the snapshot it replaced.
func (s *Store) Swap(snap *domain.Snapshot) *domain.Snapshot {
	return s.current.Swap(snap)
}
