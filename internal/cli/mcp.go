package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobmatch/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio transport)",
	Long: `Start the MCP (Model Context Protocol) server using stdio transport.

This lets AI assistants rank and score job matches and send notifications.
Logs go to stderr; stdout carries the protocol.

Example client configuration:

{
  "mcpServers": {
    "jobmatch": {
      "command": "/path/to/jobmatch",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// Check if MCP is enabled
	if !a.cfg.MCP.Enabled {
		return fmt.Errorf("MCP server is disabled in config")
	}

	rec, err := a.recommender(cmd.Context(), true, false, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	server := mcp.New(rec,
		mcp.WithLogger(a.logger),
		mcp.WithProfiles(a.store),
		mcp.WithVersion(version),
		mcp.WithDefaultLimit(a.cfg.Matching.Limit),
	)

	// Handle interrupt
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	// Run server
	return server.Start(ctx)
}
