package decoder

import (
	"io"
	"strings"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// Column positions, per domain.DatasetKind.Columns.
const (
	titleID, titleType, titlePrimary, titleOriginal, titleAdult,
	titleStart, titleEnd, titleRuntime, titleGenres = 0, 1, 2, 3, 4, 5, 6, 7, 8

	ratingID, ratingAverage, ratingVotes = 0, 1, 2

	akaID, akaOrdering, akaTitle, akaRegion, akaLanguage, akaOriginal = 0, 1, 2, 3, 4, 7

	principalID, principalOrdering, principalPerson, principalCategory = 0, 1, 2, 3

	nameID, namePrimary, nameBirth, nameDeath, nameProfessions, nameKnownFor = 0, 1, 2, 3, 4, 5
)

// NewTitles decodes title.basics rows.
func NewTitles(r io.Reader) *Decoder[domain.TitleRow] {
	return newDecoder(domain.DatasetTitles, r, func(f *fields) (domain.TitleRow, error) {
		id, err := f.key(titleID)
		if err != nil {
			return domain.TitleRow{}, err
		}
		return domain.TitleRow{
			ID:             id,
			TitleType:      strings.TrimSpace(f.text(titleType)),
			PrimaryTitle:   strings.TrimSpace(f.text(titlePrimary)),
			OriginalTitle:  strings.TrimSpace(f.text(titleOriginal)),
			Adult:          f.flag(titleAdult),
			StartYear:      f.optionalInt(titleStart),
			EndYear:        f.optionalInt(titleEnd),
			RuntimeMinutes: f.optionalInt(titleRuntime),
			Genres:         f.set(titleGenres, 0),
		}, nil
	})
}

// NewRatings decodes title.ratings rows. Both numbers are required.
func NewRatings(r io.Reader) *Decoder[domain.RatingRow] {
	return newDecoder(domain.DatasetRatings, r, func(f *fields) (domain.RatingRow, error) {
		id, err := f.key(ratingID)
		if err != nil {
			return domain.RatingRow{}, err
		}
		avg, err := f.rating(ratingAverage)
		if err != nil {
			return domain.RatingRow{}, err
		}
		votes, err := f.count(ratingVotes)
		if err != nil {
			return domain.RatingRow{}, err
		}
		return domain.RatingRow{TitleID: id, AverageRating: avg, NumVotes: votes}, nil
	})
}

// NewAkas decodes title.akas rows. Rows without a title text are dropped.
func NewAkas(r io.Reader) *Decoder[domain.AkaRow] {
	return newDecoder(domain.DatasetAkas, r, func(f *fields) (domain.AkaRow, error) {
		id, err := f.key(akaID)
		if err != nil {
			return domain.AkaRow{}, err
		}
		title := strings.TrimSpace(f.text(akaTitle))
		if title == "" {
			return domain.AkaRow{}, errMalformed
		}
		row := domain.AkaRow{
			TitleID:    id,
			Title:      title,
			Region:     strings.TrimSpace(f.text(akaRegion)),
			Language:   strings.TrimSpace(f.text(akaLanguage)),
			IsOriginal: f.flag(akaOriginal),
		}
		if n := f.optionalInt(akaOrdering); n != nil {
			row.Ordering = *n
		}
		return row, nil
	})
}

// NewPrincipals decodes title.principals rows.
func NewPrincipals(r io.Reader) *Decoder[domain.PrincipalRow] {
	return newDecoder(domain.DatasetPrincipals, r, func(f *fields) (domain.PrincipalRow, error) {
		id, err := f.key(principalID)
		if err != nil {
			return domain.PrincipalRow{}, err
		}
		person, err := f.key(principalPerson)
		if err != nil {
			return domain.PrincipalRow{}, err
		}
		row := domain.PrincipalRow{
			TitleID:  id,
			PersonID: person,
			Category: strings.TrimSpace(f.text(principalCategory)),
		}
		if n := f.optionalInt(principalOrdering); n != nil {
			row.Ordering = *n
		}
		return row, nil
	})
}

// NewNames decodes name.basics rows. Known-for titles are capped at
// domain.MaxKnownForTitles, order preserved.
func NewNames(r io.Reader) *Decoder[domain.NameRow] {
	return newDecoder(domain.DatasetNames, r, func(f *fields) (domain.NameRow, error) {
		id, err := f.key(nameID)
		if err != nil {
			return domain.NameRow{}, err
		}
		return domain.NameRow{
			ID:                 id,
			PrimaryName:        strings.TrimSpace(f.text(namePrimary)),
			BirthYear:          f.optionalInt(nameBirth),
			DeathYear:          f.optionalInt(nameDeath),
			PrimaryProfessions: f.set(nameProfessions, 0),
			KnownForTitles:     f.set(nameKnownFor, domain.MaxKnownForTitles),
		}, nil
	})
}
