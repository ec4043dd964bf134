package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spotivol/internal/console"
	"spotivol/pkg/logging"

	"github.com/spf13/cobra"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive console",
	Long: `Start an interactive console for logging in, applying profiles and
binding profile hotkeys.

The console keeps running while logins complete in the background, reloads
tokens when another spotivol process logs in or out, and prints every volume
change as a status line. Type 'help' for the available commands.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logs := logging.InitForConsole(level)
	defer logging.CloseConsoleChannel()

	application, err := newApplication(true, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Start(); err != nil {
		return fmt.Errorf("failed to start spotivol: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return console.New(application, application.Services().Bus, logs).Run(ctx)
}
