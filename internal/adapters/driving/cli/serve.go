package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/cinedex/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/cinedex/internal/adapters/driving/mcp"
	"github.com/custodia-labs/cinedex/internal/adapters/driving/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the search API over HTTP on the configured bind address.

With --watch the data directory is watched and the index is rebuilt after
dataset files change. When a rebuild interval is configured
(scheduler.rebuild_interval) the index is also rebuilt periodically.
With --mcp the MCP endpoint is mounted at /mcp on the same listener.

Examples:
  cinedex serve
  cinedex serve --addr 0.0.0.0:8080 --watch
  cinedex serve --mcp`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.bind_addr)")
	serveCmd.Flags().Bool("watch", false, "rebuild when dataset files change")
	serveCmd.Flags().Bool("mcp", false, "also serve MCP over streamable HTTP at /mcp")
	serveCmd.Flags().Bool("build-if-missing", false, "build the index before serving when none exists")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	addr, _ := f.GetString("addr")
	if addr == "" {
		addr = svc.Config.Server.BindAddr
	}
	withWatch, _ := f.GetBool("watch")
	withMCP, _ := f.GetBool("mcp")
	buildIfMissing, _ := f.GetBool("build-if-missing")

	ctx := contextOf(cmd)
	if buildIfMissing {
		if err := ensureIndex(cmd, svc); err != nil {
			return err
		}
	}

	srv, err := httpapi.NewServer(svc.Search, svc.Index)
	if err != nil {
		return err
	}
	if withMCP {
		m, err := mcp.NewServer(&mcp.Ports{Search: svc.Search, Index: svc.Index})
		if err != nil {
			return err
		}
		srv.Handle("/mcp", m.Handler())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, addr)
	})
	if withWatch {
		w := watch.New(svc.Config.Paths.DataDir, svc.Index, watch.Options{
			Debounce: svc.Config.Watch.Debounce,
		})
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	if svc.Scheduler != nil && svc.Config.Scheduler.Active() {
		g.Go(func() error {
			return svc.Scheduler.Start(ctx)
		})
	}

	cmd.PrintErrf("Serving on http://%s\n", addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// ensureIndex builds the first generation when nothing is served yet.
func ensureIndex(cmd *cobra.Command, svc *Services) error {
	status, err := svc.Index.Status(contextOf(cmd))
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	if status.Ready {
		return nil
	}
	cmd.PrintErrln("No index yet, building one first")
	if _, err := svc.Index.Rebuild(contextOf(cmd)); err != nil {
		return fmt.Errorf("index build failed: %w", explain(err))
	}
	return nil
}
