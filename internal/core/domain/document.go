package domain

import (
	"fmt"
	"math"
)

// AlternateTitle is one localised title of a media title.
type AlternateTitle struct {
	Title    string `json:"title"`
	Region   string `json:"region,omitempty"`
	Language string `json:"language,omitempty"`
}

// TitleDocument is the composed, queryable record of one media title.
// It is immutable once handed to the index builder.
type TitleDocument struct {
	// ID is the title identifier (tconst).
	ID string `json:"id"`

	// PrimaryTitle is the popular title.
	PrimaryTitle string `json:"primary_title"`

	// OriginalTitle is the title in the original language.
	OriginalTitle string `json:"original_title,omitempty"`

	// AlternateTitles holds every distinct localisation.
	AlternateTitles []AlternateTitle `json:"alternate_titles,omitempty"`

	// TitleType is the format (movie, tvSeries, short, ...).
	TitleType string `json:"title_type,omitempty"`

	StartYear      *int `json:"start_year,omitempty"`
	EndYear        *int `json:"end_year,omitempty"`
	RuntimeMinutes *int `json:"runtime_minutes,omitempty"`

	// Genres holds up to three genres in dataset order.
	Genres []string `json:"genres,omitempty"`

	// AverageRating is absent until a rating row is seen.
	AverageRating *float64 `json:"average_rating,omitempty"`

	// NumVotes is absent until a rating row is seen.
	NumVotes *int64 `json:"num_votes,omitempty"`

	// Crew is the concatenated names of the principals in billing order.
	Crew string `json:"crew,omitempty"`
}

// HasRating reports whether a rating row was attached.
func (d *TitleDocument) HasRating() bool {
	return d.AverageRating != nil
}

// Validate checks the document against the title schema.
func (d *TitleDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: title document without identifier", ErrSchemaViolation)
	}
	if d.AverageRating != nil {
		r := *d.AverageRating
		if math.IsNaN(r) || math.IsInf(r, 0) || r < MinRating || r > MaxRating {
			return fmt.Errorf("%w: title %s has rating %v outside [%v, %v]",
				ErrSchemaViolation, d.ID, r, MinRating, MaxRating)
		}
	}
	if d.NumVotes != nil && *d.NumVotes < 0 {
		return fmt.Errorf("%w: title %s has negative vote count", ErrSchemaViolation, d.ID)
	}
	return nil
}

// NameDocument is the composed, queryable record of one person.
type NameDocument struct {
	// ID is the person identifier (nconst).
	ID string `json:"id"`

	PrimaryName string `json:"primary_name"`
	BirthYear   *int   `json:"birth_year,omitempty"`
	DeathYear   *int   `json:"death_year,omitempty"`

	// Professions holds the primary professions in dataset order.
	Professions []string `json:"professions,omitempty"`

	// KnownForTitles holds at most MaxKnownForTitles title ids, order preserved.
	KnownForTitles []string `json:"known_for_titles,omitempty"`
}

// Validate checks the document against the name schema.
func (d *NameDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: name document without identifier", ErrSchemaViolation)
	}
	if len(d.KnownForTitles) > MaxKnownForTitles {
		return fmt.Errorf("%w: name %s has %d known-for titles",
			ErrSchemaViolation, d.ID, len(d.KnownForTitles))
	}
	return nil
}

// Rating bounds accepted by the schema.
const (
	MinRating = 0.0
	MaxRating = 10.0
)
