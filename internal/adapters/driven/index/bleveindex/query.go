package bleveindex

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// titleQuery translates a normalised title query. Free text is OR-ed over
// the title text fields; every filter is AND-ed.
func titleQuery(q domain.TitleQuery) query.Query {
	var clauses []query.Query
	if q.HasText() {
		clauses = append(clauses, textQuery(domain.TitleSchema, q.Text))
	}
	if q.TitleType != "" {
		clauses = append(clauses, termQuery(domain.FieldTitleType, q.TitleType))
	}
	clauses = appendRange(clauses, domain.FieldStartYear, q.StartYear)
	clauses = appendRange(clauses, domain.FieldEndYear, q.EndYear)
	clauses = appendRange(clauses, domain.FieldRating, q.Rating)
	// Vote bounds use the rank field so unrated titles count as zero votes,
	// the same as under the votes sorts.
	clauses = appendRange(clauses, domain.FieldVotesRank, q.Votes)
	for _, genre := range q.Genres {
		clauses = append(clauses, termQuery(domain.FieldGenres, genre))
	}
	return conjunction(clauses)
}

// nameQuery translates a normalised name query.
func nameQuery(q domain.NameQuery) query.Query {
	var clauses []query.Query
	if q.HasText() {
		clauses = append(clauses, textQuery(domain.NameSchema, q.Text))
	}
	clauses = appendRange(clauses, domain.FieldBirthYear, q.BirthYear)
	for _, profession := range q.Professions {
		clauses = append(clauses, termQuery(domain.FieldProfessionTags, profession))
	}
	return conjunction(clauses)
}

// idQuery matches a single document by identifier.
func idQuery(id string) query.Query {
	return bleve.NewDocIDQuery([]string{id})
}

// textQuery matches any analysed term of text in any text field of the
// schema, weighted by the field boost.
func textQuery(schema []domain.FieldSpec, text string) query.Query {
	fields := domain.TextFields(schema)
	matches := make([]query.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(f.Name)
		mq.SetBoost(f.Boost)
		mq.SetOperator(query.MatchQueryOperatorOr)
		matches = append(matches, mq)
	}
	return bleve.NewDisjunctionQuery(matches...)
}

// termQuery matches an exact field. Exact fields are indexed lowercased.
func termQuery(field, value string) query.Query {
	tq := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(value)))
	tq.SetField(field)
	return tq
}

func appendRange[T domain.Number](clauses []query.Query, field string, r domain.Range[T]) []query.Query {
	if !r.IsSet() {
		return clauses
	}
	var lo, hi *float64
	if r.Min != nil {
		v := float64(*r.Min)
		lo = &v
	}
	if r.Max != nil {
		v := float64(*r.Max)
		hi = &v
	}
	inclusive := true
	rq := bleve.NewNumericRangeInclusiveQuery(lo, hi, &inclusive, &inclusive)
	rq.SetField(field)
	return append(clauses, rq)
}

func conjunction(clauses []query.Query) query.Query {
	switch len(clauses) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return clauses[0]
	default:
		return bleve.NewConjunctionQuery(clauses...)
	}
}
