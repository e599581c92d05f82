// Package cli provides the cinedex command line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// version is set at build time.
var version = "dev"

// Options carries the global flags into the bootstrap function.
type Options struct {
	ConfigDir string
	DataDir   string
	IndexDir  string
	Verbose   bool
}

// Services holds the core services the commands drive.
type Services struct {
	Search    driving.SearchService
	Index     driving.IndexService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler

	// Config is the resolved settings the services were built with.
	Config domain.AppSettings

	// Close releases everything the services hold. May be nil.
	Close func() error
}

// BootstrapFunc builds the services for one command invocation.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap BootstrapFunc
	services  *Services
	globals   Options
)

var rootCmd = &cobra.Command{
	Use:   "cinedex",
	Short: "Search the IMDb datasets from your terminal",
	Long: `cinedex ingests the IMDb tab-separated datasets into a local full-text
index and answers title and person queries from the command line, over HTTP
and over MCP.

Place the dataset files (title.basics.tsv, title.ratings.tsv, title.akas.tsv,
title.principals.tsv, name.basics.tsv, optionally gzip-compressed) in the data
directory, run 'cinedex index', then search.`,
	SilenceUsage: true,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.ConfigDir, "config-dir", "", "directory holding config.toml (default ~/.cinedex)")
	flags.StringVar(&globals.DataDir, "data-dir", "", "directory holding the dataset files")
	flags.StringVar(&globals.IndexDir, "index-dir", "", "directory holding the index generations")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services on first use.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices injects ready-made services, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeServices(); err == nil {
		err = closeErr
	}
	return err
}

// requireServices returns the services, bootstrapping them on first use.
func requireServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}

	if globals.Verbose {
		logger.SetVerbose(true)
	}
	s, err := bootstrap(contextOf(cmd), globals)
	if err != nil {
		return nil, fmt.Errorf("starting cinedex: %w", err)
	}
	logger.SetVerbose(s.Config.Verbose || globals.Verbose)
	services = s
	return s, nil
}

// closeServices releases services that hold resources. Injected services
// without a Close function are kept.
func closeServices() error {
	if services == nil || services.Close == nil {
		return nil
	}
	closeFn := services.Close
	services = nil
	return closeFn()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// explain adds a hint for errors a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexUnavailable):
		return fmt.Errorf("%w (run 'cinedex index' to build one)", err)
	case errors.Is(err, domain.ErrMissingDataset):
		return fmt.Errorf("%w (check the files in the data directory)", err)
	default:
		return err
	}
}
