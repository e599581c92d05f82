package driven

import (
	"context"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// BuildCatalog persists the history of index builds.
// The latest committed record decides which generation is served at startup.
type BuildCatalog interface {
	// SaveBuild creates or updates a record keyed by RunID.
	SaveBuild(ctx context.Context, record *domain.BuildRecord) error

	// GetBuild returns the record for a run, or domain.ErrNotFound.
	GetBuild(ctx context.Context, runID string) (*domain.BuildRecord, error)

	// LatestCommitted returns the most recently committed build.
	// Returns nil and no error if nothing was ever committed.
	LatestCommitted(ctx context.Context) (*domain.BuildRecord, error)

	// ListBuilds returns records ordered by start time descending.
	ListBuilds(ctx context.Context, limit int) ([]domain.BuildRecord, error)
}
