package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"spotivol/internal/app"
	"spotivol/internal/cli"
	"spotivol/internal/volume"

	"github.com/spf13/cobra"
)

var volumeBackend string

// volumeCmd represents the volume command group
var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Set the Spotify volume",
	Long: `Set the Spotify volume once and exit.

The backend defaults to the one in config.yaml and can be overridden with
--backend. The Web API backend needs a login; the local backend changes the
Spotify desktop app's stream through pactl.

Examples:
  spotivol volume set 40               # Set the volume to 40%
  spotivol volume set 40% --backend local
  spotivol volume profile "Profile 1"  # Apply a configured profile`,
}

var volumeSetCmd = &cobra.Command{
	Use:   "set <percent>",
	Short: "Set the volume to a percentage (0-100, clamped)",
	Args:  cobra.ExactArgs(1),
	RunE:  runVolumeSet,
}

var volumeProfileCmd = &cobra.Command{
	Use:   "profile <name>",
	Short: "Apply the volume of a configured profile",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVolumeProfile,
}

func init() {
	rootCmd.AddCommand(volumeCmd)
	volumeCmd.AddCommand(volumeSetCmd)
	volumeCmd.AddCommand(volumeProfileCmd)

	volumeCmd.PersistentFlags().StringVarP(&volumeBackend, "backend", "b", "", "Backend to use (webapi, local)")
}

// parsePercent accepts "40" and "40%". Values outside [0, 100] are clamped.
func parsePercent(arg string) (int, error) {
	percent, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(arg), "%"))
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q: expected a number between 0 and 100", arg)
	}
	return volume.Clamp(percent), nil
}

// newVolumeApplication creates the application and applies --backend.
func newVolumeApplication() (*app.Application, error) {
	var backend volume.Backend
	if volumeBackend != "" {
		parsed, err := volume.ParseBackend(volumeBackend)
		if err != nil {
			return nil, err
		}
		backend = parsed
	}

	application, err := newApplication(false, nil)
	if err != nil {
		return nil, err
	}
	if backend != "" {
		application.SetBackend(backend)
	}
	return application, nil
}

func runVolumeSet(cmd *cobra.Command, args []string) error {
	percent, err := parsePercent(args[0])
	if err != nil {
		return err
	}

	application, err := newVolumeApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	result := application.SetVolume(commandContext(cmd), percent, "cli")
	return reportVolumeResult(cmd, application, result)
}

func runVolumeProfile(cmd *cobra.Command, args []string) error {
	application, err := newVolumeApplication()
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.ApplyProfile(commandContext(cmd), strings.Join(args, " "), "cli")
	if err != nil {
		return err
	}
	return reportVolumeResult(cmd, application, result)
}

func reportVolumeResult(cmd *cobra.Command, application *app.Application, result volume.Result) error {
	if err := cli.ResultError(result, application.Settings().WebAPI.BaseURL); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(result.Message))
	return nil
}
