package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const (
	// defaultReleaseRepo is the GitHub repository (owner/repo) releases are published to.
	defaultReleaseRepo = "spotivol/spotivol"

	// releaseRepoEnv overrides the release repository, e.g. for forks.
	releaseRepoEnv = "SPOTIVOL_RELEASE_REPO"
)

var (
	selfUpdateRepo  string
	selfUpdateCheck bool
)

// newSelfUpdateCmd creates the Cobra command for the self-update functionality.
func newSelfUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update spotivol to the latest release",
		Long: `Looks up the latest GitHub release of spotivol and replaces the running
binary when the release is newer.

The release repository defaults to ` + defaultReleaseRepo + ` and can be changed with
--repo or the ` + releaseRepoEnv + ` environment variable.

Examples:
  spotivol self-update                  # Update in place
  spotivol self-update --check          # Only report whether an update exists
  spotivol self-update --repo me/spotivol`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
	cmd.Flags().StringVar(&selfUpdateRepo, "repo", "", "GitHub repository (owner/repo) to update from")
	cmd.Flags().BoolVar(&selfUpdateCheck, "check", false, "Only check for a newer release")
	return cmd
}

// releaseRepo resolves the repository from --repo, the environment and the default, in that order.
func releaseRepo() string {
	if selfUpdateRepo != "" {
		return selfUpdateRepo
	}
	if repo := os.Getenv(releaseRepoEnv); repo != "" {
		return repo
	}
	return defaultReleaseRepo
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)
	repo := releaseRepo()

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	fmt.Fprintf(out, "Checking %s for releases newer than %s...\n", repo, currentVersion)
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release for this platform found in %s", repo)
	}

	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintln(out, "spotivol is up to date.")
		return nil
	}

	fmt.Fprintf(out, "spotivol %s is available (published %s).\n", latest.Version(), latest.PublishedAt)
	if selfUpdateCheck {
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(out, "Updated %s to %s\n", exe, latest.Version())
	return nil
}
