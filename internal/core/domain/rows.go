package domain

// TitleRow is one decoded line of title.basics.
type TitleRow struct {
	ID             string
	TitleType      string
	PrimaryTitle   string
	OriginalTitle  string
	Adult          bool
	StartYear      *int
	EndYear        *int
	RuntimeMinutes *int
	Genres         []string
}

// RatingRow is one decoded line of title.ratings.
type RatingRow struct {
	TitleID       string
	AverageRating float64
	NumVotes      int64
}

// AkaRow is one decoded line of title.akas.
type AkaRow struct {
	TitleID  string
	Ordering int
	Title    string
	Region   string
	Language string

	// IsOriginal marks the title as the original-language title.
	IsOriginal bool
}

// PrincipalRow is one decoded line of title.principals.
type PrincipalRow struct {
	TitleID  string
	PersonID string
	Category string
	Ordering int
}

// NameRow is one decoded line of name.basics.
type NameRow struct {
	ID                 string
	PrimaryName        string
	BirthYear          *int
	DeathYear          *int
	PrimaryProfessions []string
	KnownForTitles     []string
}

// MaxKnownForTitles bounds the known-for list of a person.
const MaxKnownForTitles = 4
