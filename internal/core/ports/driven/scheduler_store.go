package driven

import (
	"context"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// SchedulerStore persists the rebuild schedule across restarts.
type SchedulerStore interface {
	// LoadSchedule returns the saved schedule.
	// Returns nil and no error if none was saved yet.
	LoadSchedule(ctx context.Context) (*domain.RebuildSchedule, error)

	// SaveSchedule replaces the saved schedule.
	SaveSchedule(ctx context.Context, schedule *domain.RebuildSchedule) error
}
