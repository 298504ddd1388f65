package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lis186/smart-tra-mcp-server/internal/adapters/driving/mcp"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  smart-tra mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  smart-tra mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "smart-tra": {
        "command": "/path/to/smart-tra",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Query:    queryService,
		Stations: stationIndex,
		Trains:   trainCatalog,
		Planner:  tripPlanner,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	// Long-running server: pick up curated alias edits without a
	// restart.
	go func() {
		err := aliasSource.Watch(cmd.Context(), func(aliases map[string]string) {
			stationIndex.SetAliases(aliases)
		})
		if err != nil && cmd.Context().Err() == nil {
			logger.Warn("alias watcher stopped: %v", err)
		}
	}()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
