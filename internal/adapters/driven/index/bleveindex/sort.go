package bleveindex

import (
	"github.com/blevesearch/bleve/v2/search"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// titleSort selects the index ordering for a title query. Every ordering
// ends on the document identifier so equal keys are deterministic.
func titleSort(q domain.TitleQuery) search.SortOrder {
	switch q.Sort {
	case domain.SortRatingDesc, domain.SortRatingAsc:
		return search.SortOrder{numericSort(domain.FieldRating, q.Sort.Descending()), byID()}
	case domain.SortVotesDesc, domain.SortVotesAsc:
		return search.SortOrder{numericSort(domain.FieldVotesRank, q.Sort.Descending()), byID()}
	default:
		return relevanceSort(q.HasText())
	}
}

// relevanceSort orders by score when text was matched, otherwise every
// hit scores alike and the identifier decides.
func relevanceSort(hasText bool) search.SortOrder {
	if hasText {
		return search.SortOrder{&search.SortScore{Desc: true}, byID()}
	}
	return search.SortOrder{byID()}
}

// numericSort puts documents without the field last in both directions.
func numericSort(field string, desc bool) *search.SortField {
	return &search.SortField{
		Field:   field,
		Desc:    desc,
		Type:    search.SortFieldAsNumber,
		Mode:    search.SortFieldDefault,
		Missing: search.SortFieldMissingLast,
	}
}

func byID() *search.SortDocID {
	return &search.SortDocID{}
}

// titleSortValue reports the attribute a hit was ordered by.
func titleSortValue(mode domain.SortMode, d *domain.TitleDocument) *float64 {
	switch mode {
	case domain.SortRatingDesc, domain.SortRatingAsc:
		if d.AverageRating == nil {
			return nil
		}
		v := *d.AverageRating
		return &v
	case domain.SortVotesDesc, domain.SortVotesAsc:
		var v float64
		if d.NumVotes != nil {
			v = float64(*d.NumVotes)
		}
		return &v
	default:
		return nil
	}
}
