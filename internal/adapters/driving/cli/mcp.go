package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docloader/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docloader/internal/connectors/filesystem"
	"github.com/custodia-labs/docloader/internal/core/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can load files.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

The server exposes the load_files, load_status, find_modules and load_assets
tools and the docloader://status resource. Load flags apply to every load
requested through the server.

Examples:
  # Stdio mode (default)
  docloader mcp serve

  # HTTP mode
  docloader mcp serve --port 8080 --writer sqlite --writer-path docs.db`,
	RunE: runMCPServe,
}

// serveMCP runs the server until ctx is done. Replaced in tests.
var serveMCP = func(ctx context.Context, cmd *cobra.Command, server *mcp.Server, port int) error {
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

func init() {
	mcpServeCmd.Flags().Int("port", 0, "HTTP port (0 = use stdio)")
	addLoadFlags(mcpServeCmd)
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	settings, store, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	rt, err := buildLoader(settings, store)
	if err != nil {
		return err
	}
	defer rt.Close()

	finder := filesystem.NewModulesFinder()
	ports := &mcp.Ports{
		Loader:  rt.loader,
		Assets:  services.NewAssetLoader(finder, rt.loader, finder.AssetsDir),
		Modules: finder,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	return serveMCP(cmd.Context(), cmd, server, port)
}
