package cmd

import (
	"spotivol/internal/cli"

	"github.com/spf13/cobra"
)

var profileOutputFlags cli.OutputFlags

// profileCmd represents the profile command group
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect volume profiles",
	Long: `Volume profiles are named volume levels with an optional hotkey,
configured in config.yaml:

  profiles:
    - name: Quiet
      volume: 20
      hotkey: ctrl+alt+1

Apply a profile with 'spotivol volume profile <name>', or bind its hotkey in
'spotivol console'.`,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the configured profiles",
	Args:    cobra.NoArgs,
	RunE:    runProfileList,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	cli.RegisterOutputFlags(profileListCmd, &profileOutputFlags)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	format, err := profileOutputFlags.Format()
	if err != nil {
		return err
	}

	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	return cli.WriteProfiles(cmd.OutOrStdout(), format, application.Profiles(), profileOutputFlags.NoHeaders)
}
