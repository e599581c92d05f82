package driving

import (
	"context"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// SearchService answers structured queries against the committed index.
type SearchService interface {
	// SearchTitles finds titles by text and filters.
	SearchTitles(ctx context.Context, q domain.TitleQuery) (domain.TitleResults, error)

	// SearchNames finds people by name, profession and birth year.
	SearchNames(ctx context.Context, q domain.NameQuery) (domain.NameResults, error)

	// GetTitle looks a title up by identifier.
	GetTitle(ctx context.Context, id string) (*domain.TitleDocument, error)

	// GetName looks a person up by identifier.
	GetName(ctx context.Context, id string) (*domain.NameDocument, error)
}
