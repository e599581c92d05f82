package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// SearchTitlesInput is the input schema for the search_titles tool.
type SearchTitlesInput struct {
	Query        string   `json:"query,omitempty" jsonschema:"free text matched against every title variant and the crew"`
	TitleType    string   `json:"title_type,omitempty" jsonschema:"restrict to one format such as movie or tvSeries"`
	StartYearMin *int     `json:"start_year_min,omitempty" jsonschema:"earliest release year (inclusive)"`
	StartYearMax *int     `json:"start_year_max,omitempty" jsonschema:"latest release year (inclusive)"`
	EndYearMin   *int     `json:"end_year_min,omitempty" jsonschema:"earliest end year (inclusive)"`
	EndYearMax   *int     `json:"end_year_max,omitempty" jsonschema:"latest end year (inclusive)"`
	MinRating    *float64 `json:"min_rating,omitempty" jsonschema:"minimum average rating (0-10)"`
	MaxRating    *float64 `json:"max_rating,omitempty" jsonschema:"maximum average rating (0-10)"`
	MinVotes     *int64   `json:"min_votes,omitempty" jsonschema:"minimum number of votes"`
	MaxVotes     *int64   `json:"max_votes,omitempty" jsonschema:"maximum number of votes"`
	Genres       []string `json:"genres,omitempty" jsonschema:"genres a title must all carry"`
	Sort         string   `json:"sort,omitempty" jsonschema:"relevance, rating_desc, rating_asc, votes_desc or votes_asc"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10, max 50)"`
}

// SearchNamesInput is the input schema for the search_names tool.
type SearchNamesInput struct {
	Query        string   `json:"query,omitempty" jsonschema:"name or profession to search for"`
	BirthYearMin *int     `json:"birth_year_min,omitempty" jsonschema:"earliest birth year (inclusive)"`
	BirthYearMax *int     `json:"birth_year_max,omitempty" jsonschema:"latest birth year (inclusive)"`
	Professions  []string `json:"professions,omitempty" jsonschema:"professions a person must all carry"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10, max 50)"`
}

// LookupInput is the input schema for the get_title and get_name tools.
type LookupInput struct {
	ID string `json:"id" jsonschema:"identifier such as tt0133093 or nm0000206"`
}

// NoInput is the input schema for tools without arguments.
type NoInput struct{}

// TitleOutput represents a single title.
type TitleOutput struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	OriginalTitle  string   `json:"original_title,omitempty"`
	TitleType      string   `json:"title_type,omitempty"`
	StartYear      *int     `json:"start_year,omitempty"`
	EndYear        *int     `json:"end_year,omitempty"`
	RuntimeMinutes *int     `json:"runtime_minutes,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Votes          *int64   `json:"votes,omitempty"`
	Crew           string   `json:"crew,omitempty"`
	Score          float64  `json:"score,omitempty"`
}

// NameOutput represents a single person.
type NameOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	BirthYear   *int     `json:"birth_year,omitempty"`
	DeathYear   *int     `json:"death_year,omitempty"`
	Professions []string `json:"professions,omitempty"`
	KnownFor    []string `json:"known_for,omitempty"`
	Score       float64  `json:"score,omitempty"`
}

// SearchTitlesOutput is the output schema for the search_titles tool.
type SearchTitlesOutput struct {
	Results []TitleOutput `json:"results"`
	Count   int           `json:"count"`
	Total   uint64        `json:"total"`
}

// SearchNamesOutput is the output schema for the search_names tool.
type SearchNamesOutput struct {
	Results []NameOutput `json:"results"`
	Count   int          `json:"count"`
	Total   uint64       `json:"total"`
}

// StatusOutput is the output schema for the index tools.
type StatusOutput struct {
	Ready      bool   `json:"ready"`
	Generation string `json:"generation,omitempty"`
	Titles     uint64 `json:"titles"`
	Names      uint64 `json:"names"`
	Building   bool   `json:"building"`
	LastBuild  string `json:"last_build,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_titles",
		Description: "Search movies, series and other titles by text, type, year, rating, votes and genre",
	}, s.handleSearchTitles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_names",
		Description: "Search people by name, profession and birth year",
	}, s.handleSearchNames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_title",
		Description: "Look up a title by its identifier",
	}, s.handleGetTitle)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_name",
		Description: "Look up a person by their identifier",
	}, s.handleGetName)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rebuild_index",
		Description: "Rebuild the index from the dataset files and wait for it to finish",
	}, s.handleRebuild)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report the served index generation and document counts",
	}, s.handleStatus)
}

// handleSearchTitles handles the search_titles tool invocation.
func (s *Server) handleSearchTitles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchTitlesInput,
) (*mcp.CallToolResult, SearchTitlesOutput, error) {
	sort, err := domain.ParseSortMode(input.Sort)
	if err != nil {
		return nil, SearchTitlesOutput{}, err
	}

	q := domain.TitleQuery{
		Text:      input.Query,
		TitleType: input.TitleType,
		StartYear: domain.Range[int]{Min: input.StartYearMin, Max: input.StartYearMax},
		EndYear:   domain.Range[int]{Min: input.EndYearMin, Max: input.EndYearMax},
		Rating:    domain.Range[float64]{Min: input.MinRating, Max: input.MaxRating},
		Votes:     domain.Range[int64]{Min: input.MinVotes, Max: input.MaxVotes},
		Genres:    input.Genres,
		Sort:      sort,
		Limit:     limitOf(input.Limit),
	}

	res, err := s.ports.Search.SearchTitles(ctx, q)
	if err != nil {
		return nil, SearchTitlesOutput{}, err
	}

	output := SearchTitlesOutput{
		Results: make([]TitleOutput, len(res.Hits)),
		Count:   len(res.Hits),
		Total:   res.Total,
	}
	for i := range res.Hits {
		output.Results[i] = titleOutput(&res.Hits[i].Document)
		output.Results[i].Score = res.Hits[i].Score
	}

	return nil, output, nil
}

// handleSearchNames handles the search_names tool invocation.
func (s *Server) handleSearchNames(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchNamesInput,
) (*mcp.CallToolResult, SearchNamesOutput, error) {
	q := domain.NameQuery{
		Text:        input.Query,
		BirthYear:   domain.Range[int]{Min: input.BirthYearMin, Max: input.BirthYearMax},
		Professions: input.Professions,
		Limit:       limitOf(input.Limit),
	}

	res, err := s.ports.Search.SearchNames(ctx, q)
	if err != nil {
		return nil, SearchNamesOutput{}, err
	}

	output := SearchNamesOutput{
		Results: make([]NameOutput, len(res.Hits)),
		Count:   len(res.Hits),
		Total:   res.Total,
	}
	for i := range res.Hits {
		output.Results[i] = nameOutput(&res.Hits[i].Document)
		output.Results[i].Score = res.Hits[i].Score
	}

	return nil, output, nil
}

func (s *Server) handleGetTitle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, TitleOutput, error) {
	doc, err := s.ports.Search.GetTitle(ctx, input.ID)
	if err != nil {
		return nil, TitleOutput{}, err
	}
	return nil, titleOutput(doc), nil
}

func (s *Server) handleGetName(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, NameOutput, error) {
	doc, err := s.ports.Search.GetName(ctx, input.ID)
	if err != nil {
		return nil, NameOutput{}, err
	}
	return nil, nameOutput(doc), nil
}

// handleRebuild runs a rebuild to completion and reports the resulting status.
func (s *Server) handleRebuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if s.ports.Index == nil {
		return nil, StatusOutput{}, ErrIndexManagementUnavailable
	}
	if _, err := s.ports.Index.Rebuild(ctx); err != nil {
		return nil, StatusOutput{}, err
	}
	return s.handleStatus(ctx, nil, NoInput{})
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if s.ports.Index == nil {
		return nil, StatusOutput{}, ErrIndexManagementUnavailable
	}
	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	output := StatusOutput{
		Ready:      status.Ready,
		Generation: status.Generation,
		Titles:     status.TitleCount,
		Names:      status.NameCount,
		Building:   status.Building,
	}
	if last := status.LastBuild; last != nil {
		output.LastBuild = last.State.String()
		output.LastError = last.Error
	}
	return nil, output, nil
}

// limitOf maps the tool's zero value to the default limit.
func limitOf(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func titleOutput(d *domain.TitleDocument) TitleOutput {
	return TitleOutput{
		ID:             d.ID,
		Title:          d.PrimaryTitle,
		OriginalTitle:  d.OriginalTitle,
		TitleType:      d.TitleType,
		StartYear:      d.StartYear,
		EndYear:        d.EndYear,
		RuntimeMinutes: d.RuntimeMinutes,
		Genres:         d.Genres,
		Rating:         d.AverageRating,
		Votes:          d.NumVotes,
		Crew:           d.Crew,
	}
}

func nameOutput(d *domain.NameDocument) NameOutput {
	return NameOutput{
		ID:          d.ID,
		Name:        d.PrimaryName,
		BirthYear:   d.BirthYear,
		DeathYear:   d.DeathYear,
		Professions: d.Professions,
		KnownFor:    d.KnownForTitles,
	}
}
