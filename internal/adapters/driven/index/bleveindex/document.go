package bleveindex

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// titleFields validates a title document and flattens it into the
// field map indexed by bleve. Numeric fields are written as float64 and
// only when known, except votes_rank which is always present.
func titleFields(d domain.TitleDocument) (map[string]any, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode title %s: %w", d.ID, err)
	}

	fields := map[string]any{
		domain.FieldID:           d.ID,
		domain.FieldPrimaryTitle: d.PrimaryTitle,
		domain.FieldPayload:      string(payload),
	}
	setText(fields, domain.FieldOriginalTitle, d.OriginalTitle)
	setText(fields, domain.FieldCrew, d.Crew)
	setText(fields, domain.FieldTitleType, d.TitleType)

	if len(d.AlternateTitles) > 0 {
		alts := make([]string, 0, len(d.AlternateTitles))
		for _, alt := range d.AlternateTitles {
			alts = append(alts, alt.Title)
		}
		fields[domain.FieldAltTitles] = alts
	}
	if len(d.Genres) > 0 {
		fields[domain.FieldGenres] = d.Genres
	}

	setNumber(fields, domain.FieldStartYear, d.StartYear)
	setNumber(fields, domain.FieldEndYear, d.EndYear)
	setNumber(fields, domain.FieldRuntimeMinutes, d.RuntimeMinutes)
	setNumber(fields, domain.FieldRating, d.AverageRating)
	setNumber(fields, domain.FieldVotes, d.NumVotes)

	var rank float64
	if d.NumVotes != nil {
		rank = float64(*d.NumVotes)
	}
	fields[domain.FieldVotesRank] = rank

	return fields, nil
}

// nameFields validates a name document and flattens it for indexing.
func nameFields(d domain.NameDocument) (map[string]any, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode name %s: %w", d.ID, err)
	}

	fields := map[string]any{
		domain.FieldID:          d.ID,
		domain.FieldPrimaryName: d.PrimaryName,
		domain.FieldPayload:     string(payload),
	}
	if len(d.Professions) > 0 {
		fields[domain.FieldProfessions] = d.Professions
		fields[domain.FieldProfessionTags] = d.Professions
	}
	setNumber(fields, domain.FieldBirthYear, d.BirthYear)
	setNumber(fields, domain.FieldDeathYear, d.DeathYear)

	return fields, nil
}

func setText(fields map[string]any, name, value string) {
	if value != "" {
		fields[name] = value
	}
}

func setNumber[T domain.Number](fields map[string]any, name string, value *T) {
	if value != nil {
		fields[name] = float64(*value)
	}
}

// decodePayload restores a document from its stored JSON payload.
func decodePayload[D any](fields map[string]any, id string) (D, error) {
	var doc D
	raw, ok := fields[domain.FieldPayload].(string)
	if !ok {
		return doc, fmt.Errorf("document %s has no stored payload", id)
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return doc, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}
