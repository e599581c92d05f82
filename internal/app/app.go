// Package app wires the driven adapters into the core services.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/cinedex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cinedex/internal/adapters/driven/dataset/filesystem"
	"github.com/custodia-labs/cinedex/internal/adapters/driven/index/bleveindex"
	"github.com/custodia-labs/cinedex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cinedex/internal/core/domain"
	"github.com/custodia-labs/cinedex/internal/core/ports/driven"
	"github.com/custodia-labs/cinedex/internal/core/services"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// Options are the command line overrides applied on top of the resolved
// settings. Empty values leave the setting alone.
type Options struct {
	ConfigDir string
	DataDir   string
	IndexDir  string
	Verbose   bool

	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string
}

// App holds the wired services and the resources behind them.
type App struct {
	Settings  *services.SettingsService
	Index     *services.IndexService
	Search    *services.SearchService
	Scheduler *services.Scheduler

	// Config is the settings the services were built with.
	Config domain.AppSettings

	closeDeps func() error
}

// New resolves settings, opens the catalog and serves the last committed
// index generation, if any.
func New(ctx context.Context, opts Options) (*App, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, getenv)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("resolve settings: %w", err)
	}
	applyOverrides(settings, opts)
	logger.SetVerbose(settings.Verbose)

	indexDir := settings.Paths.ResolvedIndexDir()
	logger.Debug("Data directory: %s", settings.Paths.DataDir)
	logger.Debug("Index directory: %s", indexDir)

	store, err := sqlite.NewStore(ctx, indexDir)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	a, err := Assemble(ctx, *settings, Deps{
		Source:         filesystem.New(settings.Paths.DataDir),
		Builder:        bleveindex.New(indexDir, settings.Ingest.BatchSize),
		Catalog:        store.BuildCatalog(),
		SchedulerStore: store.SchedulerStore(),
		Close:          store.Close,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.Settings = settingsService
	return a, nil
}

// Deps are the driven adapters the services run on.
type Deps struct {
	Source         driven.DatasetSource
	Builder        driven.IndexBuilder
	Catalog        driven.BuildCatalog
	SchedulerStore driven.SchedulerStore

	// Close releases the adapters. May be nil.
	Close func() error
}

// Assemble builds the index, search and scheduler services on deps and
// serves the last committed generation. Settings is left nil.
func Assemble(ctx context.Context, settings domain.AppSettings, deps Deps) (*App, error) {
	composer := services.NewComposer(deps.Source, settings.Ingest)
	indexService := services.NewIndexService(composer, deps.Builder, deps.Catalog)
	if err := indexService.Open(ctx); err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return &App{
		Index:     indexService,
		Search:    services.NewSearchService(indexService, settings.Ranking),
		Scheduler: services.NewScheduler(settings.Scheduler, deps.SchedulerStore, indexService),
		Config:    settings,
		closeDeps: deps.Close,
	}, nil
}

// Close stops serving and releases the adapters.
func (a *App) Close() error {
	err := a.Index.Close()
	if a.closeDeps != nil {
		err = errors.Join(err, a.closeDeps())
	}
	return err
}

func applyOverrides(settings *domain.AppSettings, opts Options) {
	if opts.DataDir != "" {
		settings.Paths.DataDir = opts.DataDir
	}
	if opts.IndexDir != "" {
		settings.Paths.IndexDir = opts.IndexDir
	}
	if opts.Verbose {
		settings.Verbose = true
	}
}
