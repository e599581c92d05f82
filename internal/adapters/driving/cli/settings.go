package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure data locations, the HTTP listener, ingest tuning,
ranking and scheduled rebuilds.

Settings resolve from defaults, then config.toml, then the environment
(IMDB_DATA_DIR, IMDB_INDEX_DIR, IMDB_BIND_ADDR, IMDB_VERBOSE).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	interval := "disabled"
	if settings.Scheduler.Active() {
		interval = "every " + settings.Scheduler.RebuildInterval.String()
	}
	optional := make([]string, 0, len(settings.Ingest.OptionalDatasets))
	for _, kind := range settings.Ingest.OptionalDatasets {
		optional = append(optional, kind.String())
	}

	rows := [][]string{
		{"paths", "data_dir", settings.Paths.DataDir},
		{"paths", "index_dir", settings.Paths.ResolvedIndexDir()},
		{"server", "bind_addr", settings.Server.BindAddr},
		{"ingest", "workers", strconv.Itoa(settings.Ingest.Workers)},
		{"ingest", "batch_size", strconv.Itoa(settings.Ingest.BatchSize)},
		{"ingest", "optional_datasets", orNone(strings.Join(optional, ", "))},
		{"ranking", "blend", strconv.FormatBool(settings.Ranking.Blend)},
		{"watch", "debounce", settings.Watch.Debounce.String()},
		{"scheduler", "enabled", strconv.FormatBool(settings.Scheduler.Enabled)},
		{"scheduler", "rebuild_interval", interval},
		{"", "verbose", strconv.FormatBool(settings.Verbose)},
	}
	writeTable(cmd, []string{"SECTION", "KEY", "VALUE"}, rows)

	if err := svc.Settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'cinedex settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("cinedex Settings Wizard")
	cmd.Println("=======================")
	cmd.Println("Press Enter to keep the value in brackets.")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	ask := func(prompt, current string) string {
		cmd.Printf("%s [%s]: ", prompt, current)
		if input := readLine(reader); input != "" {
			return input
		}
		return current
	}

	settings.Paths.DataDir = ask("Data directory", settings.Paths.DataDir)
	settings.Paths.IndexDir = ask("Index directory", settings.Paths.ResolvedIndexDir())
	settings.Server.BindAddr = ask("HTTP bind address", settings.Server.BindAddr)
	settings.Ingest.Workers = parseNumber(ask("Ingest workers", strconv.Itoa(settings.Ingest.Workers)), settings.Ingest.Workers)
	settings.Ingest.BatchSize = parseNumber(ask("Index batch size", strconv.Itoa(settings.Ingest.BatchSize)), settings.Ingest.BatchSize)
	settings.Ranking.Blend = parseYesNo(ask("Blend popularity into relevance (y/n)", yesNo(settings.Ranking.Blend)), settings.Ranking.Blend)
	settings.Watch.Debounce = parseDuration(ask("Watch debounce", settings.Watch.Debounce.String()), settings.Watch.Debounce)

	interval := settings.Scheduler.RebuildInterval
	settings.Scheduler.RebuildInterval = parseDuration(ask("Rebuild interval (0 disables)", interval.String()), interval)
	settings.Scheduler.Enabled = settings.Scheduler.RebuildInterval > 0

	if err := svc.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println()
	cmd.Print("Validating configuration... ")
	if err := svc.Settings.Validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseNumber(input string, defaultVal int) int {
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 {
		return defaultVal
	}
	return val
}

func parseDuration(input string, defaultVal time.Duration) time.Duration {
	if input == "0" {
		return 0
	}
	d, err := time.ParseDuration(input)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func parseYesNo(input string, defaultVal bool) bool {
	switch strings.ToLower(input) {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	default:
		return defaultVal
	}
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
