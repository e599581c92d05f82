package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// parseTitleQuery reads a title query from URL parameters. Unparsable numbers
// are rejected with domain.ErrInvalidQuery; everything else is left to
// TitleQuery.Normalize.
func parseTitleQuery(v url.Values) (domain.TitleQuery, error) {
	q := domain.TitleQuery{
		Text:      v.Get("query"),
		TitleType: v.Get("title_type"),
		Genres:    multi(v, "genres"),
	}

	var err error
	if q.Sort, err = domain.ParseSortMode(v.Get("sort")); err != nil {
		return q, err
	}
	if q.Limit, err = optionalInt(v, "limit"); err != nil {
		return q, err
	}
	if q.StartYear, err = intRange(v, "start_year_min", "start_year_max"); err != nil {
		return q, err
	}
	if q.EndYear, err = intRange(v, "end_year_min", "end_year_max"); err != nil {
		return q, err
	}
	if q.Rating.Min, err = optional(v, "min_rating", parseFloat); err != nil {
		return q, err
	}
	if q.Rating.Max, err = optional(v, "max_rating", parseFloat); err != nil {
		return q, err
	}
	if q.Votes.Min, err = optional(v, "min_votes", parseInt64); err != nil {
		return q, err
	}
	if q.Votes.Max, err = optional(v, "max_votes", parseInt64); err != nil {
		return q, err
	}
	return q, nil
}

// parseNameQuery reads a person query from URL parameters.
func parseNameQuery(v url.Values) (domain.NameQuery, error) {
	q := domain.NameQuery{
		Text:        v.Get("query"),
		Professions: multi(v, "primary_profession"),
	}

	var err error
	if q.Limit, err = optionalInt(v, "limit"); err != nil {
		return q, err
	}
	if q.BirthYear, err = intRange(v, "birth_year_min", "birth_year_max"); err != nil {
		return q, err
	}
	return q, nil
}

// multi returns every value of a repeated parameter. Comma-separated values
// are split so that ?genres=Drama,Crime and ?genres=Drama&genres=Crime agree.
func multi(v url.Values, key string) []string {
	var out []string
	for _, raw := range v[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intRange(v url.Values, minKey, maxKey string) (domain.Range[int], error) {
	var r domain.Range[int]
	var err error
	if r.Min, err = optionalInt(v, minKey); err != nil {
		return r, err
	}
	r.Max, err = optionalInt(v, maxKey)
	return r, err
}

func optionalInt(v url.Values, key string) (*int, error) {
	return optional(v, key, strconv.Atoi)
}

func optional[T any](v url.Values, key string, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidQuery, key, raw)
	}
	return &n, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
