package bleveindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.IndexReader = (*Reader)(nil)

// scoreNone disables scoring when hits are ordered by identifier only.
const scoreNone = "none"

// Reader serves queries from one read-only generation.
type Reader struct {
	generation string
	titles     bleve.Index
	names      bleve.Index
}

// Generation names the generation being served.
func (r *Reader) Generation() string {
	return r.generation
}

// SearchTitles runs a normalised title query.
func (r *Reader) SearchTitles(ctx context.Context, q domain.TitleQuery) (domain.TitleResults, error) {
	req := newRequest(titleQuery(q), q.Limit)
	req.SortByCustom(titleSort(q))
	if q.Sort == domain.SortRelevance && !q.HasText() {
		req.Score = scoreNone
	}

	res, err := r.titles.SearchInContext(ctx, req)
	if err != nil {
		return domain.TitleResults{}, fmt.Errorf("query titles: %w", err)
	}

	results := domain.TitleResults{Total: res.Total, Hits: make([]domain.TitleHit, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		doc, err := decodePayload[domain.TitleDocument](hit.Fields, hit.ID)
		if err != nil {
			return domain.TitleResults{}, err
		}
		results.Hits = append(results.Hits, domain.TitleHit{
			Document:  doc,
			Score:     hit.Score,
			SortValue: titleSortValue(q.Sort, &doc),
		})
	}
	return results, nil
}

// SearchNames runs a normalised name query.
func (r *Reader) SearchNames(ctx context.Context, q domain.NameQuery) (domain.NameResults, error) {
	req := newRequest(nameQuery(q), q.Limit)
	req.SortByCustom(relevanceSort(q.HasText()))
	if !q.HasText() {
		req.Score = scoreNone
	}

	res, err := r.names.SearchInContext(ctx, req)
	if err != nil {
		return domain.NameResults{}, fmt.Errorf("query names: %w", err)
	}

	results := domain.NameResults{Total: res.Total, Hits: make([]domain.NameHit, 0, len(res.Hits))}
	for _, hit := range res.Hits {
		doc, err := decodePayload[domain.NameDocument](hit.Fields, hit.ID)
		if err != nil {
			return domain.NameResults{}, err
		}
		results.Hits = append(results.Hits, domain.NameHit{Document: doc, Score: hit.Score})
	}
	return results, nil
}

// GetTitle looks a title up by identifier.
func (r *Reader) GetTitle(ctx context.Context, id string) (*domain.TitleDocument, error) {
	hit, err := lookup(ctx, r.titles, id)
	if err != nil {
		return nil, fmt.Errorf("title %s: %w", id, err)
	}
	doc, err := decodePayload[domain.TitleDocument](hit.Fields, hit.ID)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetName looks a person up by identifier.
func (r *Reader) GetName(ctx context.Context, id string) (*domain.NameDocument, error) {
	hit, err := lookup(ctx, r.names, id)
	if err != nil {
		return nil, fmt.Errorf("name %s: %w", id, err)
	}
	doc, err := decodePayload[domain.NameDocument](hit.Fields, hit.ID)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Counts returns the number of indexed titles and names.
func (r *Reader) Counts() (titles, names uint64, err error) {
	if titles, err = r.titles.DocCount(); err != nil {
		return 0, 0, fmt.Errorf("count titles: %w", err)
	}
	if names, err = r.names.DocCount(); err != nil {
		return 0, 0, fmt.Errorf("count names: %w", err)
	}
	return titles, names, nil
}

// Close releases both indexes.
func (r *Reader) Close() error {
	return errors.Join(r.titles.Close(), r.names.Close())
}

func newRequest(q query.Query, limit *int) *bleve.SearchRequest {
	size := domain.DefaultLimit
	if limit != nil {
		size = *limit
	}
	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.Fields = []string{domain.FieldPayload}
	return req
}

func lookup(ctx context.Context, idx bleve.Index, id string) (*search.DocumentMatch, error) {
	req := newRequest(idQuery(id), nil)
	req.Size = 1
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(res.Hits) == 0 {
		return nil, domain.ErrNotFound
	}
	return res.Hits[0], nil
}
