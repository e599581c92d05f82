package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index from the dataset files",
	Long: `Decode every dataset in the data directory, compose title and person
documents and write them to a new index generation. The new generation is
served only once it is complete; a failed or interrupted build leaves the
previous generation in place.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the served index generation",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent index builds",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	addFormatFlag(indexCmd)
	addFormatFlag(statusCmd)
	historyCmd.Flags().IntP("limit", "n", 10, "number of builds to list (0 = all)")
	addFormatFlag(historyCmd)

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	cmd.PrintErrf("Indexing datasets from %s\n", svc.Config.Paths.DataDir)
	rec, err := svc.Index.Rebuild(contextOf(cmd))
	if err != nil {
		return fmt.Errorf("index build failed: %w", explain(err))
	}

	if format == formatJSON {
		return writeJSON(cmd, rec)
	}
	writeBuild(cmd, rec)
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	status, err := svc.Index.Status(contextOf(cmd))
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	if format == formatJSON {
		return writeJSON(cmd, status)
	}

	ready := "no index yet (run 'cinedex index')"
	if status.Ready {
		ready = "serving generation " + status.Generation
	}
	fields := [][2]string{
		{"Index", ready},
		{"Titles", humanize.Comma(int64(status.TitleCount))},
		{"People", humanize.Comma(int64(status.NameCount))},
	}
	if status.Building {
		fields = append(fields, [2]string{"Build", "in progress"})
	}
	if last := status.LastBuild; last != nil {
		fields = append(fields, [2]string{"Last build", describeBuild(last)})
	}
	writeFields(cmd, fields)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	builds, err := svc.Index.History(contextOf(cmd), limit)
	if err != nil {
		return fmt.Errorf("failed to read build history: %w", err)
	}

	if format == formatJSON {
		if builds == nil {
			builds = []domain.BuildRecord{}
		}
		return writeJSON(cmd, builds)
	}
	if len(builds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No builds recorded.")
		return nil
	}

	rows := make([][]string, 0, len(builds))
	for i := range builds {
		b := &builds[i]
		rows = append(rows, []string{
			b.Generation,
			b.State.String(),
			humanize.Time(b.StartedAt),
			b.Duration().Round(time.Millisecond).String(),
			strconv.Itoa(b.TitleCount),
			strconv.Itoa(b.NameCount),
			b.Error,
		})
	}
	writeTable(cmd, []string{"GENERATION", "STATE", "STARTED", "DURATION", "TITLES", "PEOPLE", "ERROR"}, rows)
	return nil
}

func writeBuild(cmd *cobra.Command, rec *domain.BuildRecord) {
	writeFields(cmd, [][2]string{
		{"Generation", rec.Generation},
		{"State", rec.State.String()},
		{"Titles", humanize.Comma(int64(rec.TitleCount))},
		{"People", humanize.Comma(int64(rec.NameCount))},
		{"Took", rec.Duration().Round(time.Millisecond).String()},
	})
	rows := make([][]string, 0, len(rec.Stats))
	for _, s := range rec.Stats {
		rows = append(rows, []string{
			s.Kind.String(),
			humanize.Comma(int64(s.Rows)),
			humanize.Comma(int64(s.Malformed)),
			humanize.Comma(int64(s.Degraded)),
		})
	}
	if len(rows) > 0 {
		writeTable(cmd, []string{"DATASET", "ROWS", "MALFORMED", "DEGRADED"}, rows)
	}
}

func describeBuild(b *domain.BuildRecord) string {
	desc := fmt.Sprintf("%s %s", b.State, humanize.Time(b.StartedAt))
	if b.Error != "" {
		desc += ": " + b.Error
	}
	return desc
}
