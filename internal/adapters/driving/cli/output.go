package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

// Output formats accepted by --format.
const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", formatAuto, "output format: auto, table or json (auto picks table on a terminal)")
}

// resolveFormat turns --format into table or json.
func resolveFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("getting format flag: %w", err)
	}
	switch strings.ToLower(format) {
	case formatAuto, "":
		if isTerminal(cmd.OutOrStdout()) {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeTable(cmd *cobra.Command, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
}

// writeFields prints aligned key/value lines for single-record views.
func writeFields(cmd *cobra.Command, fields [][2]string) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	label := lipgloss.NewStyle().Bold(true).Width(width + 2)
	out := cmd.OutOrStdout()
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintln(out, label.Render(f[0]+":")+f[1])
	}
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatYears(start, end *int) string {
	switch {
	case start == nil:
		return "-"
	case end == nil || *end == *start:
		return strconv.Itoa(*start)
	default:
		return fmt.Sprintf("%d-%d", *start, *end)
	}
}

func formatRating(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatVotes(v *int64) string {
	if v == nil {
		return "-"
	}
	return humanize.Comma(*v)
}
