package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cinedex/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/cinedex/internal/core/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search titles or people",
	Long: `Search the committed index. Free text is matched against every title
variant (primary, original and localised titles) and the crew names for titles,
and against the primary name and professions for people.`,
}

var searchTitlesCmd = &cobra.Command{
	Use:   "titles [query]",
	Short: "Search titles",
	Long: `Search titles by free text and filters. Filters narrow the match set;
they never rank. Without a query the filters alone select titles.

Examples:
  cinedex search titles the matrix
  cinedex search titles --type movie --genre Drama --min-votes 10000 --sort rating_desc
  cinedex search titles --start-year-min 1990 --start-year-max 1999 heat`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearchTitles,
}

var searchNamesCmd = &cobra.Command{
	Use:   "names [query]",
	Short: "Search people",
	Long: `Search people by name, profession and birth year. A query or at least one
filter is required.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearchNames,
}

func init() {
	f := searchTitlesCmd.Flags()
	f.String("type", "", "title type, e.g. movie or tvSeries")
	f.Int("start-year-min", 0, "earliest start year")
	f.Int("start-year-max", 0, "latest start year")
	f.Int("end-year-min", 0, "earliest end year")
	f.Int("end-year-max", 0, "latest end year")
	f.Float64("min-rating", 0, "minimum average rating")
	f.Float64("max-rating", 0, "maximum average rating")
	f.Int64("min-votes", 0, "minimum vote count")
	f.Int64("max-votes", 0, "maximum vote count")
	f.StringSlice("genre", nil, "required genre (repeatable)")
	f.String("sort", string(domain.SortRelevance), "relevance, rating_desc, rating_asc, votes_desc or votes_asc")
	f.IntP("limit", "n", domain.DefaultLimit, "maximum number of results")
	addFormatFlag(searchTitlesCmd)

	f = searchNamesCmd.Flags()
	f.Int("birth-year-min", 0, "earliest birth year")
	f.Int("birth-year-max", 0, "latest birth year")
	f.StringSlice("profession", nil, "required profession (repeatable)")
	f.IntP("limit", "n", domain.DefaultLimit, "maximum number of results")
	addFormatFlag(searchNamesCmd)

	searchCmd.AddCommand(searchTitlesCmd)
	searchCmd.AddCommand(searchNamesCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearchTitles(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	q, err := titleQueryFromFlags(cmd, args)
	if err != nil {
		return err
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	res, err := svc.Search.SearchTitles(contextOf(cmd), q)
	if err != nil {
		return fmt.Errorf("search failed: %w", explain(err))
	}

	if format == formatJSON {
		return writeJSON(cmd, httpapi.NewTitleSearchResponse(res))
	}
	outputTitleTable(cmd, res)
	return nil
}

func runSearchNames(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	q, err := nameQueryFromFlags(cmd, args)
	if err != nil {
		return err
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	res, err := svc.Search.SearchNames(contextOf(cmd), q)
	if err != nil {
		return fmt.Errorf("search failed: %w", explain(err))
	}

	if format == formatJSON {
		return writeJSON(cmd, httpapi.NewNameSearchResponse(res))
	}
	outputNameTable(cmd, res)
	return nil
}

func titleQueryFromFlags(cmd *cobra.Command, args []string) (domain.TitleQuery, error) {
	f := cmd.Flags()
	sort, err := f.GetString("sort")
	if err != nil {
		return domain.TitleQuery{}, err
	}
	mode, err := domain.ParseSortMode(sort)
	if err != nil {
		return domain.TitleQuery{}, err
	}
	titleType, _ := f.GetString("type")
	genres, _ := f.GetStringSlice("genre")

	q := domain.TitleQuery{
		Text:      strings.Join(args, " "),
		TitleType: titleType,
		Genres:    genres,
		Sort:      mode,
	}
	q.StartYear.Min = optional(cmd, "start-year-min", f.GetInt)
	q.StartYear.Max = optional(cmd, "start-year-max", f.GetInt)
	q.EndYear.Min = optional(cmd, "end-year-min", f.GetInt)
	q.EndYear.Max = optional(cmd, "end-year-max", f.GetInt)
	q.Rating.Min = optional(cmd, "min-rating", f.GetFloat64)
	q.Rating.Max = optional(cmd, "max-rating", f.GetFloat64)
	q.Votes.Min = optional(cmd, "min-votes", f.GetInt64)
	q.Votes.Max = optional(cmd, "max-votes", f.GetInt64)
	q.Limit = optional(cmd, "limit", f.GetInt)
	return q, nil
}

func nameQueryFromFlags(cmd *cobra.Command, args []string) (domain.NameQuery, error) {
	f := cmd.Flags()
	professions, _ := f.GetStringSlice("profession")

	q := domain.NameQuery{
		Text:        strings.Join(args, " "),
		Professions: professions,
	}
	q.BirthYear.Min = optional(cmd, "birth-year-min", f.GetInt)
	q.BirthYear.Max = optional(cmd, "birth-year-max", f.GetInt)
	q.Limit = optional(cmd, "limit", f.GetInt)
	return q, nil
}

// optional returns the flag value when it was set on the command line.
func optional[T any](cmd *cobra.Command, name string, get func(string) (T, error)) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return nil
	}
	return &v
}

func outputTitleTable(cmd *cobra.Command, res domain.TitleResults) {
	if len(res.Hits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No titles found.")
		return
	}

	rows := make([][]string, 0, len(res.Hits))
	for i := range res.Hits {
		d := &res.Hits[i].Document
		rows = append(rows, []string{
			d.ID,
			d.PrimaryTitle,
			d.TitleType,
			formatYears(d.StartYear, d.EndYear),
			formatRating(d.AverageRating),
			formatVotes(d.NumVotes),
			strings.Join(d.Genres, ", "),
		})
	}
	writeTable(cmd, []string{"ID", "TITLE", "TYPE", "YEAR", "RATING", "VOTES", "GENRES"}, rows)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d matching titles\n", len(res.Hits), res.Total)
}

func outputNameTable(cmd *cobra.Command, res domain.NameResults) {
	if len(res.Hits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No people found.")
		return
	}

	rows := make([][]string, 0, len(res.Hits))
	for i := range res.Hits {
		d := &res.Hits[i].Document
		rows = append(rows, []string{
			d.ID,
			d.PrimaryName,
			formatInt(d.BirthYear),
			formatInt(d.DeathYear),
			strings.Join(d.Professions, ", "),
			strings.Join(d.KnownForTitles, ", "),
		})
	}
	writeTable(cmd, []string{"ID", "NAME", "BORN", "DIED", "PROFESSIONS", "KNOWN FOR"}, rows)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d matching people\n", len(res.Hits), res.Total)
}
