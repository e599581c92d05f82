package httpapi

import (
	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// TitleResult is the wire form of a title.
type TitleResult struct {
	ID              string                  `json:"tconst"`
	PrimaryTitle    string                  `json:"primary_title"`
	OriginalTitle   string                  `json:"original_title,omitempty"`
	TitleType       string                  `json:"title_type,omitempty"`
	StartYear       *int                    `json:"start_year,omitempty"`
	EndYear         *int                    `json:"end_year,omitempty"`
	RuntimeMinutes  *int                    `json:"runtime_minutes,omitempty"`
	Genres          []string                `json:"genres,omitempty"`
	AverageRating   *float64                `json:"average_rating,omitempty"`
	NumVotes        *int64                  `json:"num_votes,omitempty"`
	AlternateTitles []domain.AlternateTitle `json:"alternate_titles,omitempty"`
	Crew            string                  `json:"crew,omitempty"`
	Score           *float64                `json:"score,omitempty"`
	SortValue       *float64                `json:"sort_value,omitempty"`
}

// NameResult is the wire form of a person.
type NameResult struct {
	ID             string   `json:"nconst"`
	PrimaryName    string   `json:"primary_name"`
	BirthYear      *int     `json:"birth_year,omitempty"`
	DeathYear      *int     `json:"death_year,omitempty"`
	Professions    []string `json:"primary_profession,omitempty"`
	KnownForTitles []string `json:"known_for_titles,omitempty"`
	Score          *float64 `json:"score,omitempty"`
}

// TitleSearchResponse is returned by the title search routes.
type TitleSearchResponse struct {
	Results []TitleResult `json:"results"`
	Total   uint64        `json:"total"`
}

// NameSearchResponse is returned by the person search route.
type NameSearchResponse struct {
	Results []NameResult `json:"results"`
	Total   uint64       `json:"total"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status     string `json:"status"`
	Ready      bool   `json:"ready"`
	Generation string `json:"generation,omitempty"`
}

// StatusResponse is returned by /admin/status.
type StatusResponse struct {
	Index   *domain.IndexStatus  `json:"index"`
	History []domain.BuildRecord `json:"history"`
}

// RebuildResponse is returned by /admin/rebuild.
type RebuildResponse struct {
	// Status is "accepted" for background rebuilds and the build state otherwise.
	Status string              `json:"status"`
	Build  *domain.BuildRecord `json:"build,omitempty"`
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Message string `json:"message"`
}

// NewTitleResult converts a document to its wire form.
func NewTitleResult(d *domain.TitleDocument) TitleResult {
	return TitleResult{
		ID:              d.ID,
		PrimaryTitle:    d.PrimaryTitle,
		OriginalTitle:   d.OriginalTitle,
		TitleType:       d.TitleType,
		StartYear:       d.StartYear,
		EndYear:         d.EndYear,
		RuntimeMinutes:  d.RuntimeMinutes,
		Genres:          d.Genres,
		AverageRating:   d.AverageRating,
		NumVotes:        d.NumVotes,
		AlternateTitles: d.AlternateTitles,
		Crew:            d.Crew,
	}
}

// NewNameResult converts a document to its wire form.
func NewNameResult(d *domain.NameDocument) NameResult {
	return NameResult{
		ID:             d.ID,
		PrimaryName:    d.PrimaryName,
		BirthYear:      d.BirthYear,
		DeathYear:      d.DeathYear,
		Professions:    d.Professions,
		KnownForTitles: d.KnownForTitles,
	}
}

// NewTitleSearchResponse converts a result page to its wire form.
func NewTitleSearchResponse(res domain.TitleResults) TitleSearchResponse {
	out := TitleSearchResponse{
		Results: make([]TitleResult, 0, len(res.Hits)),
		Total:   res.Total,
	}
	for i := range res.Hits {
		hit := &res.Hits[i]
		r := NewTitleResult(&hit.Document)
		r.Score = domain.Ptr(hit.Score)
		r.SortValue = hit.SortValue
		out.Results = append(out.Results, r)
	}
	return out
}

// NewNameSearchResponse converts a result page to its wire form.
func NewNameSearchResponse(res domain.NameResults) NameSearchResponse {
	out := NameSearchResponse{
		Results: make([]NameResult, 0, len(res.Hits)),
		Total:   res.Total,
	}
	for i := range res.Hits {
		hit := &res.Hits[i]
		r := NewNameResult(&hit.Document)
		r.Score = domain.Ptr(hit.Score)
		out.Results = append(out.Results, r)
	}
	return out
}
