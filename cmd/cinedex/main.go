// Command cinedex indexes the IMDb datasets and serves searches over them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/cinedex/internal/adapters/driving/cli"
	"github.com/custodia-labs/cinedex/internal/app"
	"github.com/custodia-labs/cinedex/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env if present; a missing file is normal outside development.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	a, err := app.New(ctx, app.Options{
		ConfigDir: opts.ConfigDir,
		DataDir:   opts.DataDir,
		IndexDir:  opts.IndexDir,
		Verbose:   opts.Verbose,
	})
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Search:    a.Search,
		Index:     a.Index,
		Settings:  a.Settings,
		Scheduler: a.Scheduler,
		Config:    a.Config,
		Close:     a.Close,
	}, nil
}
