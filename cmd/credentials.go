package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"spotivol/internal/cli"
	"spotivol/internal/oauth"
	pkgstrings "spotivol/pkg/strings"

	"github.com/spf13/cobra"
)

var (
	credentialsClientID     string
	credentialsClientSecret string
	credentialsClearYes     bool
)

// credentialsCmd represents the credentials command group
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the Spotify API credentials",
	Long: `Manage the Client ID and Client Secret of your Spotify app.

To create an app:
  1. Go to https://developer.spotify.com/dashboard
  2. Click 'Create an App'
  3. In Settings, add the redirect URI shown by 'spotivol credentials show'
  4. Run 'spotivol credentials set' with the app's Client ID and Client Secret

Examples:
  spotivol credentials set                                  # Prompt for both values
  spotivol credentials set --client-id ID --client-secret S
  spotivol credentials show
  spotivol credentials clear --yes`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the Client ID and Client Secret",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsSet,
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured credentials (secret redacted)",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsShow,
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsClear,
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)

	credentialsSetCmd.Flags().StringVar(&credentialsClientID, "client-id", "", "Spotify app Client ID")
	credentialsSetCmd.Flags().StringVar(&credentialsClientSecret, "client-secret", "", "Spotify app Client Secret")
	credentialsClearCmd.Flags().BoolVarP(&credentialsClearYes, "yes", "y", false, "Skip confirmation prompt")
}

// prompt reads one line from reader after printing label.
func prompt(w io.Writer, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	creds := oauth.Credentials{ClientID: credentialsClientID, ClientSecret: credentialsClientSecret}
	var err error
	if creds.ClientID == "" {
		if creds.ClientID, err = prompt(out, reader, "Client ID: "); err != nil {
			return err
		}
	}
	if creds.ClientSecret == "" {
		if creds.ClientSecret, err = prompt(out, reader, "Client Secret: "); err != nil {
			return err
		}
	}

	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Services().Client.SetCredentials(creds); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess("API credentials saved"))
	fmt.Fprintf(out, "Make sure %s is registered as a Redirect URI of your Spotify app.\n", application.Services().Client.RedirectURI())
	return nil
}

func runCredentialsShow(cmd *cobra.Command, args []string) error {
	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	client := application.Services().Client
	if !client.HasCredentials() {
		return &cli.CredentialsRequiredError{Guidance: oauth.CredentialsGuidance(client.RedirectURI())}
	}

	creds := client.Credentials()
	cli.WriteKeyValues(cmd.OutOrStdout(), map[string]string{
		"Client ID":     creds.ClientID,
		"Client Secret": pkgstrings.Redact(creds.ClientSecret),
		"Redirect URI":  client.RedirectURI(),
		"Stored in":     client.Store().CredentialsPath(),
	})
	return nil
}

func runCredentialsClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if !credentialsClearYes {
		reader := bufio.NewReader(cmd.InOrStdin())
		response, err := prompt(out, reader, "Remove the stored Spotify API credentials? [y/N]: ")
		if err != nil {
			return err
		}
		response = strings.ToLower(response)
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Services().Client.ClearCredentials(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	fmt.Fprintln(out, "Cleared the stored API credentials.")
	return nil
}
