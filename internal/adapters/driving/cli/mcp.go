package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cinedex/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Expose title and person search plus index management as MCP tools.

Stdio is used unless --http names a listen address, in which case the
streamable HTTP endpoint is served at /mcp.

Examples:
  cinedex mcp serve
  cinedex mcp serve --http 127.0.0.1:8080
  cinedex mcp serve --build-if-missing

Client configuration:
  {
    "mcpServers": {
      "cinedex": {
        "command": "/path/to/cinedex",
        "args": ["mcp", "serve", "--data-dir", "/path/to/imdb"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio")
	mcpServeCmd.Flags().Bool("build-if-missing", false, "build the index before serving when none exists")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("http")
	if build, _ := cmd.Flags().GetBool("build-if-missing"); build {
		if err := ensureIndex(cmd, svc); err != nil {
			return err
		}
	}

	server, err := mcp.NewServer(&mcp.Ports{Search: svc.Search, Index: svc.Index})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	if addr == "" {
		return server.Run(contextOf(cmd))
	}
	cmd.PrintErrf("MCP endpoint at http://%s/mcp\n", addr)
	return server.RunHTTP(contextOf(cmd), addr)
}
