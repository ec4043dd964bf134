package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spotivol/internal/mcpserver"

	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve spotivol as an MCP server on stdio",
	Long: `Run an MCP (Model Context Protocol) server on stdin/stdout so that AI
assistants can control the Spotify volume.

Tools:
  set_volume      Set the volume to a percentage
  apply_profile   Apply a configured volume profile
  list_profiles   List the configured profiles
  auth_status     Report the login and backend state

Log in first with 'spotivol auth login'; the server uses the stored tokens.

Example MCP client configuration:
  {
    "mcpServers": {
      "spotivol": {
        "command": "spotivol",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpserver.NewServer(application, GetVersion()).Start(ctx); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
