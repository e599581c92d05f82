package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// rerankFactor widens the candidate window re-scored by the popularity blend.
	rerankFactor = 4

	// maxRerankWindow bounds the widened window.
	maxRerankWindow = 200
)

// ReaderLeaser runs a function against the served index generation while
// holding a read lease on it.
type ReaderLeaser interface {
	WithReader(ctx context.Context, fn func(driven.IndexReader) error) error
}

// SearchService answers title and name queries.
type SearchService struct {
	index  ReaderLeaser
	ranker *PopularityRanker
	blend  bool
}

// NewSearchService creates a new search service.
func NewSearchService(index ReaderLeaser, ranking domain.RankingSettings) *SearchService {
	return &SearchService{
		index:  index,
		ranker: NewPopularityRanker(),
		blend:  ranking.Blend,
	}
}

// SearchTitles finds titles matching the query text and filters.
func (s *SearchService) SearchTitles(ctx context.Context, q domain.TitleQuery) (domain.TitleResults, error) {
	logger.Section("Title Search")

	q, err := q.Normalize()
	if err != nil {
		return domain.TitleResults{}, err
	}
	limit := *q.Limit
	logger.Debug("Query: %q, sort: %s, limit: %d, filters: %t", q.Text, q.Sort, limit, q.HasFilters())

	rerank := s.blend && q.Sort == domain.SortRelevance && q.HasText()
	request := q
	if rerank {
		// Request more results internally so the blend can promote from below the cut.
		request.Limit = domain.Ptr(min(limit*rerankFactor, maxRerankWindow))
		logger.Debug("Internal limit: %d", *request.Limit)
	}

	var results domain.TitleResults
	err = s.index.WithReader(ctx, func(r driven.IndexReader) error {
		var searchErr error
		results, searchErr = r.SearchTitles(ctx, request)
		return searchErr
	})
	if err != nil {
		return domain.TitleResults{}, fmt.Errorf("search titles: %w", err)
	}
	logger.Debug("Index returned %d of %d matches", len(results.Hits), results.Total)

	if rerank {
		s.ranker.Rerank(results.Hits, q.Text)
		logger.Debug("Applied popularity blend")
	}
	if len(results.Hits) > limit {
		results.Hits = results.Hits[:limit]
	}

	logger.Info("Title search %q: %d results", q.Text, len(results.Hits))
	return results, nil
}

// SearchNames finds people by name, profession and birth year.
func (s *SearchService) SearchNames(ctx context.Context, q domain.NameQuery) (domain.NameResults, error) {
	logger.Section("Name Search")

	q, err := q.Normalize()
	if err != nil {
		return domain.NameResults{}, err
	}
	logger.Debug("Query: %q, professions: %v, limit: %d", q.Text, q.Professions, *q.Limit)

	var results domain.NameResults
	err = s.index.WithReader(ctx, func(r driven.IndexReader) error {
		var searchErr error
		results, searchErr = r.SearchNames(ctx, q)
		return searchErr
	})
	if err != nil {
		return domain.NameResults{}, fmt.Errorf("search names: %w", err)
	}

	logger.Info("Name search %q: %d results", q.Text, len(results.Hits))
	return results, nil
}

// GetTitle looks a title up by identifier.
func (s *SearchService) GetTitle(ctx context.Context, id string) (*domain.TitleDocument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty title identifier", domain.ErrInvalidInput)
	}

	var doc *domain.TitleDocument
	err := s.index.WithReader(ctx, func(r driven.IndexReader) error {
		var getErr error
		doc, getErr = r.GetTitle(ctx, id)
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("get title %s: %w", id, err)
	}
	return doc, nil
}

// GetName looks a person up by identifier.
func (s *SearchService) GetName(ctx context.Context, id string) (*domain.NameDocument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty name identifier", domain.ErrInvalidInput)
	}

	var doc *domain.NameDocument
	err := s.index.WithReader(ctx, func(r driven.IndexReader) error {
		var getErr error
		doc, getErr = r.GetName(ctx, id)
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("get name %s: %w", id, err)
	}
	return doc, nil
}
