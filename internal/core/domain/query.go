package domain

import (
	"fmt"
	"math"
	"strings"
)

// Result limits applied to every query.
const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 50
)

// SortMode selects how title results are ordered.
type SortMode string

// Available sort modes.
const (
	// SortRelevance orders by full-text relevance; identifier order without text.
	SortRelevance SortMode = "relevance"

	// SortRatingDesc and SortRatingAsc order by average rating; unrated titles
	// come last in both directions.
	SortRatingDesc SortMode = "rating_desc"
	SortRatingAsc  SortMode = "rating_asc"

	// SortVotesDesc and SortVotesAsc order by vote count; absent counts as zero.
	SortVotesDesc SortMode = "votes_desc"
	SortVotesAsc  SortMode = "votes_asc"
)

// IsValid returns true if the sort mode is recognised.
func (m SortMode) IsValid() bool {
	switch m {
	case SortRelevance, SortRatingDesc, SortRatingAsc, SortVotesDesc, SortVotesAsc:
		return true
	default:
		return false
	}
}

// Descending reports whether the attribute order is descending.
func (m SortMode) Descending() bool {
	return m == SortRatingDesc || m == SortVotesDesc
}

// String returns the string representation.
func (m SortMode) String() string {
	return string(m)
}

// ParseSortMode parses a wire value. Empty means relevance.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return SortRelevance, nil
	}
	m := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown sort mode %q", ErrInvalidQuery, s)
	}
	return m, nil
}

// Number is the set of types a Range can bound.
type Number interface {
	~int | ~int64 | ~float64
}

// Range is an inclusive bound; a nil side is unbounded.
type Range[T Number] struct {
	Min *T
	Max *T
}

// IsSet reports whether either side is bounded.
func (r Range[T]) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether v satisfies the bound.
func (r Range[T]) Contains(v T) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func (r Range[T]) validate(name string) error {
	for _, side := range []*T{r.Min, r.Max} {
		if side != nil && math.IsNaN(float64(*side)) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidQuery, name)
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: %s minimum %v exceeds maximum %v", ErrInvalidQuery, name, *r.Min, *r.Max)
	}
	return nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// ClampLimit applies the default and the [MinLimit, MaxLimit] bounds.
// Out-of-range values are clamped, never rejected.
func ClampLimit(requested *int) int {
	if requested == nil {
		return DefaultLimit
	}
	return min(max(*requested, MinLimit), MaxLimit)
}

// TitleQuery is a structured title search request.
type TitleQuery struct {
	// Text is matched against every title variant and the crew names.
	Text string

	TitleType string
	StartYear Range[int]
	EndYear   Range[int]
	Rating    Range[float64]
	Votes     Range[int64]

	// Genres must all be carried by a matching title.
	Genres []string

	Sort SortMode

	// Limit is clamped by Normalize; nil means DefaultLimit.
	Limit *int
}

// HasText reports whether free text is present.
func (q *TitleQuery) HasText() bool {
	return strings.TrimSpace(q.Text) != ""
}

// HasFilters reports whether any filter is present.
func (q *TitleQuery) HasFilters() bool {
	return q.TitleType != "" || q.StartYear.IsSet() || q.EndYear.IsSet() ||
		q.Rating.IsSet() || q.Votes.IsSet() || len(q.Genres) > 0
}

// Normalize validates the query and returns a copy with trimmed text,
// deduplicated genres, a concrete sort mode and a clamped limit.
func (q TitleQuery) Normalize() (TitleQuery, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.TitleType = strings.TrimSpace(q.TitleType)
	q.Genres = cleanTerms(q.Genres)

	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	if !q.Sort.IsValid() {
		return TitleQuery{}, fmt.Errorf("%w: unknown sort mode %q", ErrInvalidQuery, q.Sort)
	}

	if err := q.StartYear.validate("start year"); err != nil {
		return TitleQuery{}, err
	}
	if err := q.EndYear.validate("end year"); err != nil {
		return TitleQuery{}, err
	}
	if err := q.Rating.validate("rating"); err != nil {
		return TitleQuery{}, err
	}
	if err := q.Votes.validate("votes"); err != nil {
		return TitleQuery{}, err
	}

	q.Limit = Ptr(ClampLimit(q.Limit))
	return q, nil
}

// NameQuery is a structured person search request.
type NameQuery struct {
	// Text is matched against the primary name and the professions.
	Text string

	BirthYear Range[int]

	// Professions must all be carried by a matching person.
	Professions []string

	// Limit is clamped by Normalize; nil means DefaultLimit.
	Limit *int
}

// HasText reports whether free text is present.
func (q *NameQuery) HasText() bool {
	return strings.TrimSpace(q.Text) != ""
}

// Normalize validates the query. Text is required unless a filter is given.
func (q NameQuery) Normalize() (NameQuery, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Professions = cleanTerms(q.Professions)

	if q.Text == "" && !q.BirthYear.IsSet() && len(q.Professions) == 0 {
		return NameQuery{}, fmt.Errorf("%w: provide a query or at least one filter", ErrInvalidQuery)
	}
	if err := q.BirthYear.validate("birth year"); err != nil {
		return NameQuery{}, err
	}

	q.Limit = Ptr(ClampLimit(q.Limit))
	return q, nil
}

// cleanTerms trims, drops empties and duplicates, keeping first-seen order.
func cleanTerms(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// TitleHit is one ranked title result.
type TitleHit struct {
	Document TitleDocument

	// Score is the relevance score (re-scored when blending is enabled).
	Score float64

	// SortValue is the attribute the result was ordered by, for attribute sorts.
	SortValue *float64
}

// TitleResults is an ordered title result page.
type TitleResults struct {
	Hits []TitleHit

	// Total is the number of matching titles before the limit.
	Total uint64
}

// NameHit is one ranked person result.
type NameHit struct {
	Document NameDocument
	Score    float64
}

// NameResults is an ordered person result page.
type NameResults struct {
	Hits  []NameHit
	Total uint64
}
