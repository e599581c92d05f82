package domain

// DatasetKind identifies one of the tabular datasets consumed by ingestion.
type DatasetKind string

// Known dataset kinds.
const (
	DatasetTitles     DatasetKind = "title.basics"
	DatasetRatings    DatasetKind = "title.ratings"
	DatasetAkas       DatasetKind = "title.akas"
	DatasetPrincipals DatasetKind = "title.principals"
	DatasetNames      DatasetKind = "name.basics"
)

// AllDatasetKinds lists every dataset kind in decode order.
var AllDatasetKinds = []DatasetKind{
	DatasetTitles,
	DatasetRatings,
	DatasetAkas,
	DatasetPrincipals,
	DatasetNames,
}

// IsValid returns true if the kind is recognised.
func (k DatasetKind) IsValid() bool {
	switch k {
	case DatasetTitles, DatasetRatings, DatasetAkas, DatasetPrincipals, DatasetNames:
		return true
	default:
		return false
	}
}

// FileName returns the decompressed file name for the kind.
func (k DatasetKind) FileName() string {
	return string(k) + ".tsv"
}

// Columns returns the fixed header layout of the kind.
func (k DatasetKind) Columns() []string {
	switch k {
	case DatasetTitles:
		return []string{"tconst", "titleType", "primaryTitle", "originalTitle", "isAdult",
			"startYear", "endYear", "runtimeMinutes", "genres"}
	case DatasetRatings:
		return []string{"tconst", "averageRating", "numVotes"}
	case DatasetAkas:
		return []string{"titleId", "ordering", "title", "region", "language", "types",
			"attributes", "isOriginalTitle"}
	case DatasetPrincipals:
		return []string{"tconst", "ordering", "nconst", "category", "job", "characters"}
	case DatasetNames:
		return []string{"nconst", "primaryName", "birthYear", "deathYear",
			"primaryProfession", "knownForTitles"}
	default:
		return nil
	}
}

// String returns the string representation.
func (k DatasetKind) String() string {
	return string(k)
}

// DecodeStats counts the outcome of decoding one dataset.
type DecodeStats struct {
	// Kind is the dataset the counters belong to.
	Kind DatasetKind `json:"kind"`

	// Rows is the number of rows emitted.
	Rows int `json:"rows"`

	// Malformed is the number of rows dropped for schema violations.
	Malformed int `json:"malformed"`

	// Degraded is the number of rows where an optional field fell back to absent.
	Degraded int `json:"degraded"`

	// SampleLines holds the line numbers of the first malformed rows.
	SampleLines []int `json:"sample_lines,omitempty"`
}
