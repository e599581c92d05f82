package driving

import (
	"context"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// IndexService owns the lifecycle of the served index.
type IndexService interface {
	// Open serves the last committed generation, if any.
	Open(ctx context.Context) error

	// Rebuild ingests every dataset into a new generation and swaps it in.
	// Concurrent calls share one build; a caller whose context ends stops
	// waiting while the build continues.
	Rebuild(ctx context.Context) (*domain.BuildRecord, error)

	// Status describes the served generation.
	Status(ctx context.Context) (*domain.IndexStatus, error)

	// History returns recent builds, newest first. A limit of 0 returns all.
	History(ctx context.Context, limit int) ([]domain.BuildRecord, error)

	// Close cancels any build in flight and releases the served generation.
	Close() error
}
