package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
type SchedulerStore struct {
	mu    sync.Mutex
	saved *domain.RebuildSchedule
}

// NewSchedulerStore creates an empty scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{}
}

// LoadSchedule returns a copy of the saved schedule, or nil.
func (s *SchedulerStore) LoadSchedule(_ context.Context) (*domain.RebuildSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil, nil
	}
	sched := *s.saved
	return &sched, nil
}

// SaveSchedule stores a copy of the schedule.
func (s *SchedulerStore) SaveSchedule(_ context.Context, sched *domain.RebuildSchedule) error {
	if sched == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *sched
	s.saved = &saved
	return nil
}
