package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// IndexBuilder writes complete index generations.
// Backed by bleve, one directory per generation.
type IndexBuilder interface {
	// Build indexes every document into a new generation and returns it
	// opened read-only. On any error, including cancellation, the partial
	// generation is removed before returning.
	Build(ctx context.Context, generation string,
		titles iter.Seq[domain.TitleDocument], names iter.Seq[domain.NameDocument]) (IndexReader, error)

	// Open reopens a previously built generation read-only.
	Open(ctx context.Context, generation string) (IndexReader, error)

	// Remove deletes a generation from disk. Removing a missing generation is not an error.
	Remove(generation string) error

	// List returns the generations present on disk.
	List() ([]string, error)
}

// IndexReader serves queries against one committed generation.
// Queries passed in are already normalised.
type IndexReader interface {
	SearchTitles(ctx context.Context, q domain.TitleQuery) (domain.TitleResults, error)
	SearchNames(ctx context.Context, q domain.NameQuery) (domain.NameResults, error)

	// GetTitle returns domain.ErrNotFound for unknown identifiers.
	GetTitle(ctx context.Context, id string) (*domain.TitleDocument, error)

	// GetName returns domain.ErrNotFound for unknown identifiers.
	GetName(ctx context.Context, id string) (*domain.NameDocument, error)

	// Counts returns the number of indexed titles and names.
	Counts() (titles, names uint64, err error)

	// Generation names the generation being served.
	Generation() string

	// Close releases resources.
	Close() error
}
