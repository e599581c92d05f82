package domain

// FieldKind tags how a document field is indexed.
type FieldKind int

// Field kinds.
const (
	// FieldText is tokenized for full-text matching.
	FieldText FieldKind = iota

	// FieldExact is stored untokenized and matched by exact term.
	FieldExact

	// FieldRange is numeric, matched by range and usable as a sort key.
	FieldRange

	// FieldStored is retrievable but not searchable.
	FieldStored
)

// FieldSpec describes one field of an index schema.
type FieldSpec struct {
	Name string
	Kind FieldKind

	// Repeated fields carry several values on the same document.
	Repeated bool

	// Boost weights a text field when free text is matched against it.
	Boost float64
}

// Title index field names.
const (
	FieldID             = "id"
	FieldPrimaryTitle   = "primary_title"
	FieldOriginalTitle  = "original_title"
	FieldAltTitles      = "alt_titles"
	FieldCrew           = "crew"
	FieldTitleType      = "title_type"
	FieldGenres         = "genres"
	FieldStartYear      = "start_year"
	FieldEndYear        = "end_year"
	FieldRuntimeMinutes = "runtime_minutes"
	FieldRating         = "rating"
	FieldVotes          = "votes"
	FieldVotesRank      = "votes_rank"
	FieldPayload        = "doc"
)

// Name index field names.
const (
	FieldPrimaryName    = "primary_name"
	FieldProfessions    = "professions"
	FieldProfessionTags = "profession_tags"
	FieldBirthYear      = "birth_year"
	FieldDeathYear      = "death_year"
)

// TitleSchema is the field layout of the title index.
var TitleSchema = []FieldSpec{
	{Name: FieldID, Kind: FieldExact},
	{Name: FieldPrimaryTitle, Kind: FieldText, Boost: 3},
	{Name: FieldOriginalTitle, Kind: FieldText, Boost: 2},
	{Name: FieldAltTitles, Kind: FieldText, Repeated: true, Boost: 1.5},
	{Name: FieldCrew, Kind: FieldText, Boost: 1},
	{Name: FieldTitleType, Kind: FieldExact},
	{Name: FieldGenres, Kind: FieldExact, Repeated: true},
	{Name: FieldStartYear, Kind: FieldRange},
	{Name: FieldEndYear, Kind: FieldRange},
	{Name: FieldRuntimeMinutes, Kind: FieldRange},
	{Name: FieldRating, Kind: FieldRange},
	{Name: FieldVotes, Kind: FieldRange},
	{Name: FieldVotesRank, Kind: FieldRange},
	{Name: FieldPayload, Kind: FieldStored},
}

// NameSchema is the field layout of the name index.
var NameSchema = []FieldSpec{
	{Name: FieldID, Kind: FieldExact},
	{Name: FieldPrimaryName, Kind: FieldText, Boost: 2},
	{Name: FieldProfessions, Kind: FieldText, Repeated: true, Boost: 0.5},
	{Name: FieldProfessionTags, Kind: FieldExact, Repeated: true},
	{Name: FieldBirthYear, Kind: FieldRange},
	{Name: FieldDeathYear, Kind: FieldRange},
	{Name: FieldPayload, Kind: FieldStored},
}

// TextFields returns the full-text fields of a schema in declaration order.
func TextFields(schema []FieldSpec) []FieldSpec {
	var fields []FieldSpec
	for _, f := range schema {
		if f.Kind == FieldText {
			fields = append(fields, f)
		}
	}
	return fields
}

// LookupField finds a field by name.
func LookupField(schema []FieldSpec, name string) (FieldSpec, bool) {
	for _, f := range schema {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
