package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"spotivol/internal/app"
	"spotivol/internal/cli"
	"spotivol/internal/oauth"
	"spotivol/internal/volume"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	authQuiet       bool
	authOutputFlags cli.OutputFlags
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Spotify login",
	Long: `Manage the Spotify Web API login.

spotivol uses the OAuth authorization-code flow: 'auth login' opens your
browser on Spotify's consent page and waits for Spotify to redirect back to
the local callback address registered for your app. The tokens are stored
in the config directory and shared with the console and the MCP server.

Examples:
  spotivol auth login             # Log in through the browser
  spotivol auth status            # Show login and backend state
  spotivol auth status -o json    # Same, as JSON
  spotivol auth refresh           # Force an access token refresh
  spotivol auth logout            # Forget the stored tokens`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Spotify",
	Long: `Log in to Spotify using the OAuth authorization-code flow.

API credentials must be configured first with 'spotivol credentials set'.
The command waits until Spotify redirects back or the callback timeout
expires.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Spotify tokens",
	Long: `Remove the stored access and refresh tokens. API credentials are kept,
so 'spotivol auth login' works again without reconfiguring them.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show login and backend state",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the access token",
	Long: `Exchange the stored refresh token for a new access token.

Volume commands refresh automatically when Spotify rejects an expired
token; this command is useful to verify that the stored login still works.`,
	Args: cobra.NoArgs,
	RunE: runAuthRefresh,
}

// authPrint prints output only if the --quiet flag is not set.
func authPrint(w io.Writer, format string, args ...interface{}) {
	if !authQuiet {
		fmt.Fprintf(w, format, args...)
	}
}

// authPrintln prints a line only if the --quiet flag is not set.
func authPrintln(w io.Writer, a ...interface{}) {
	if !authQuiet {
		fmt.Fprintln(w, a...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)

	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress non-essential output")
	cli.RegisterOutputFlags(authStatusCmd, &authOutputFlags)
}

// commandContext returns the command's context, or a background context
// when the command is run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Waiting for Spotify authorization..."

	application, err := newApplication(false, func(cfg *app.Config) {
		cfg.OnAuthURL = func(authURL string, browserErr error) {
			if browserErr != nil {
				// The URL is the only way forward, so it is printed even with --quiet.
				fmt.Fprintf(out, "Open this URL in your browser to log in:\n\n  %s\n\n", authURL)
			} else {
				authPrint(out, "Opened your browser to log in. If nothing happened, open:\n\n  %s\n\n", authURL)
			}
			if !authQuiet {
				s.Start()
			}
		}
	})
	if err != nil {
		return err
	}
	defer application.Close()

	result := application.Login(commandContext(cmd))
	s.Stop()

	if !result.OK {
		return loginError(result)
	}
	authPrintln(out, cli.FormatSuccess(result.Message))
	return nil
}

// loginError converts a failed login result into the typed CLI error.
func loginError(result oauth.LoginResult) error {
	if errors.Is(result.Err, oauth.ErrMissingCredentials) {
		return &cli.CredentialsRequiredError{Guidance: result.Message}
	}
	return &cli.AuthFailedError{Reason: errors.New(result.Message)}
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	if !application.Status().LoggedIn {
		authPrintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	if err := application.Logout(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	authPrintln(cmd.OutOrStdout(), "Logged out from Spotify")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	format, err := authOutputFlags.Format()
	if err != nil {
		return err
	}

	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	status := application.Status()
	if err := cli.WriteStatus(out, format, status); err != nil {
		return err
	}
	if format != cli.OutputFormatTable {
		return nil
	}

	if status.LoggedIn && !status.Expiry.IsZero() {
		authPrint(out, "\nAccess token expires %s\n", formatExpiryWithDirection(status.Expiry))
	}
	authPrintln(out)
	for _, line := range status.Capabilities.Report() {
		authPrintln(out, line)
	}
	authPrintln(out, application.Guidance())
	return nil
}

func runAuthRefresh(cmd *cobra.Command, args []string) error {
	application, err := newApplication(false, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	client := application.Services().Client
	if !client.IsAuthenticated() {
		return &cli.AuthRequiredError{Message: volume.MessageNotLoggedIn}
	}

	if err := client.Refresh(commandContext(cmd)); err != nil {
		return refreshError(err, application.Settings().OAuth.TokenURL)
	}

	out := cmd.OutOrStdout()
	authPrintln(out, cli.FormatSuccess("Access token refreshed"))
	if expiry := client.Tokens().Expiry; !expiry.IsZero() {
		authPrint(out, "Expires %s\n", formatExpiryWithDirection(expiry))
	}
	return nil
}

// refreshError converts a refresh failure into the typed CLI error.
func refreshError(err error, tokenURL string) error {
	switch {
	case oauth.IsKind(err, oauth.KindNoRefreshToken):
		return &cli.AuthRequiredError{Message: err.Error()}
	case oauth.IsKind(err, oauth.KindNetwork):
		return cli.ClassifyConnectionError(err, tokenURL)
	default:
		return &cli.AuthFailedError{Reason: err}
	}
}
