package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cinedex/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/cinedex/internal/core/domain"
)

var titleCmd = &cobra.Command{
	Use:   "title <id>",
	Short: "Show a title by identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runTitle,
}

var nameCmd = &cobra.Command{
	Use:   "name <id>",
	Short: "Show a person by identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runName,
}

func init() {
	addFormatFlag(titleCmd)
	addFormatFlag(nameCmd)
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(nameCmd)
}

func runTitle(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	doc, err := svc.Search.GetTitle(contextOf(cmd), args[0])
	if err != nil {
		return fmt.Errorf("title %s: %w", args[0], explain(err))
	}

	if format == formatJSON {
		return writeJSON(cmd, httpapi.NewTitleResult(doc))
	}

	writeFields(cmd, [][2]string{
		{"ID", doc.ID},
		{"Title", doc.PrimaryTitle},
		{"Original", originalTitle(doc)},
		{"Type", doc.TitleType},
		{"Years", formatYears(doc.StartYear, doc.EndYear)},
		{"Runtime", formatRuntime(doc.RuntimeMinutes)},
		{"Genres", strings.Join(doc.Genres, ", ")},
		{"Rating", rating(doc)},
		{"Crew", doc.Crew},
	})
	if len(doc.AlternateTitles) > 0 {
		rows := make([][]string, 0, len(doc.AlternateTitles))
		for _, alt := range doc.AlternateTitles {
			rows = append(rows, []string{alt.Title, alt.Region, alt.Language})
		}
		writeTable(cmd, []string{"ALSO KNOWN AS", "REGION", "LANGUAGE"}, rows)
	}
	return nil
}

func runName(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	doc, err := svc.Search.GetName(contextOf(cmd), args[0])
	if err != nil {
		return fmt.Errorf("name %s: %w", args[0], explain(err))
	}

	if format == formatJSON {
		return writeJSON(cmd, httpapi.NewNameResult(doc))
	}

	writeFields(cmd, [][2]string{
		{"ID", doc.ID},
		{"Name", doc.PrimaryName},
		{"Born", formatInt(doc.BirthYear)},
		{"Died", optionalYear(doc.DeathYear)},
		{"Professions", strings.Join(doc.Professions, ", ")},
		{"Known for", strings.Join(doc.KnownForTitles, ", ")},
	})
	return nil
}

func originalTitle(doc *domain.TitleDocument) string {
	if doc.OriginalTitle == doc.PrimaryTitle {
		return ""
	}
	return doc.OriginalTitle
}

func formatRuntime(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return fmt.Sprintf("%d min", *minutes)
}

func rating(doc *domain.TitleDocument) string {
	if !doc.HasRating() {
		return "unrated"
	}
	return fmt.Sprintf("%s (%s votes)", formatRating(doc.AverageRating), formatVotes(doc.NumVotes))
}

func optionalYear(v *int) string {
	if v == nil {
		return ""
	}
	return formatInt(v)
}
