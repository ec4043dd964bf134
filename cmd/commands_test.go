package cmd

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"spotivol/internal/cli"
	"spotivol/internal/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic error", errors.New("boom"), ExitCodeError},
		{"auth required", &cli.AuthRequiredError{}, ExitCodeAuthRequired},
		{"credentials required", &cli.CredentialsRequiredError{Guidance: "set them"}, ExitCodeAuthRequired},
		{"auth failed", &cli.AuthFailedError{Reason: errors.New("denied")}, ExitCodeAuthFailed},
		{"wrapped auth failed", errors.Join(errors.New("login"), &cli.AuthFailedError{Reason: errors.New("denied")}), ExitCodeAuthFailed},
		{"volume error", &cli.VolumeError{}, ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"40", 40},
		{"55%", 55},
		{" 100 ", 100},
		{"150", 100},
		{"-10", 0},
		{"-10%", 0},
	}
	for _, tt := range tests {
		percent, err := parsePercent(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, percent, tt.in)
	}

	for _, in := range []string{"", "loud", "4O", "99999999999999999999"} {
		_, err := parsePercent(in)
		assert.Error(t, err, in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "expired", formatDuration(-time.Second))
	assert.Equal(t, "< 1 minute", formatDuration(30*time.Second))
	assert.Equal(t, "1 minute", formatDuration(time.Minute))
	assert.Equal(t, "45 minutes", formatDuration(45*time.Minute))
	assert.Equal(t, "2 hours", formatDuration(2*time.Hour+10*time.Minute))
	assert.Equal(t, "3 days", formatDuration(72*time.Hour))
}

func TestLoginError(t *testing.T) {
	err := loginError(oauth.LoginResult{Message: "configure first", Err: oauth.ErrMissingCredentials})
	var credsRequired *cli.CredentialsRequiredError
	require.ErrorAs(t, err, &credsRequired)
	assert.Equal(t, "configure first", credsRequired.Guidance)

	err = loginError(oauth.LoginResult{Message: "No authorization code received within 2m0s"})
	var authFailed *cli.AuthFailedError
	require.ErrorAs(t, err, &authFailed)
	assert.Contains(t, err.Error(), "No authorization code received")
}

func TestRefreshError(t *testing.T) {
	err := refreshError(&oauth.AuthError{Kind: oauth.KindNoRefreshToken}, "https://accounts.example/api/token")
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))

	err = refreshError(&oauth.AuthError{Kind: oauth.KindRefreshFailed, StatusCode: 400}, "https://accounts.example/api/token")
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))

	err = refreshError(&oauth.AuthError{Kind: oauth.KindNetwork, Err: errors.New("dial tcp: connection refused")}, "https://accounts.example/api/token")
	var connErr *cli.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, cli.ConnectionErrorNetwork, connErr.Type)
}

func TestCredentialsSet_Flags(t *testing.T) {
	dir := useConfigDir(t, "")
	credentialsClientID, credentialsClientSecret = "my-client", "my-secret-value"
	t.Cleanup(func() { credentialsClientID, credentialsClientSecret = "", "" })

	cmd, out := newTestCommand("")
	require.NoError(t, runCredentialsSet(cmd, nil))
	assert.Contains(t, out.String(), "API credentials saved")
	assert.Contains(t, out.String(), "http://localhost:8888/callback")

	creds := oauth.NewStore(dir).LoadCredentials()
	assert.Equal(t, "my-client", creds.ClientID)
	assert.Equal(t, "my-secret-value", creds.ClientSecret)
}

func TestCredentialsSet_Prompts(t *testing.T) {
	dir := useConfigDir(t, "")

	cmd, out := newTestCommand("  prompted-id \nprompted-secret\n")
	require.NoError(t, runCredentialsSet(cmd, nil))
	assert.Contains(t, out.String(), "Client ID: ")
	assert.Contains(t, out.String(), "Client Secret: ")

	creds := oauth.NewStore(dir).LoadCredentials()
	assert.Equal(t, "prompted-id", creds.ClientID)
	assert.Equal(t, "prompted-secret", creds.ClientSecret)
}

func TestCredentialsSet_RequiresBothValues(t *testing.T) {
	dir := useConfigDir(t, "")

	cmd, _ := newTestCommand("only-id\n\n")
	err := runCredentialsSet(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both client ID and client secret are required")
	assert.False(t, oauth.NewStore(dir).LoadCredentials().Complete())
}

func TestCredentialsShow(t *testing.T) {
	dir := useConfigDir(t, "")
	saveCredentials(t, dir)

	cmd, out := newTestCommand("")
	require.NoError(t, runCredentialsShow(cmd, nil))
	assert.Contains(t, out.String(), "client-id")
	assert.Contains(t, out.String(), "cret")
	assert.NotContains(t, out.String(), "client-secret")
}

func TestCredentialsShow_NotConfigured(t *testing.T) {
	useConfigDir(t, "")

	cmd, _ := newTestCommand("")
	err := runCredentialsShow(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
	assert.Contains(t, err.Error(), "developer.spotify.com/dashboard")
}

func TestCredentialsClear(t *testing.T) {
	dir := useConfigDir(t, "")
	saveCredentials(t, dir)

	cmd, out := newTestCommand("n\n")
	require.NoError(t, runCredentialsClear(cmd, nil))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.True(t, oauth.NewStore(dir).LoadCredentials().Complete())

	cmd, out = newTestCommand("yes\n")
	require.NoError(t, runCredentialsClear(cmd, nil))
	assert.Contains(t, out.String(), "Cleared the stored API credentials.")
	assert.False(t, oauth.NewStore(dir).LoadCredentials().Complete())
}

func TestAuthLogin_WithoutCredentials(t *testing.T) {
	useConfigDir(t, "")

	cmd, _ := newTestCommand("")
	err := runAuthLogin(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
	assert.Contains(t, err.Error(), "configure your Spotify API credentials")
}

func TestAuthLogout(t *testing.T) {
	dir := useConfigDir(t, "")

	cmd, out := newTestCommand("")
	require.NoError(t, runAuthLogout(cmd, nil))
	assert.Contains(t, out.String(), "Not logged in.")

	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1"})
	cmd, out = newTestCommand("")
	require.NoError(t, runAuthLogout(cmd, nil))
	assert.Contains(t, out.String(), "Logged out from Spotify")
	assert.True(t, oauth.NewStore(dir).LoadTokens().IsZero())
}

func TestAuthStatus_JSON(t *testing.T) {
	dir := useConfigDir(t, "")
	saveCredentials(t, dir)
	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1", Expiry: time.Now().Add(time.Hour)})

	authOutputFlags.OutputFormat = string(cli.OutputFormatJSON)
	t.Cleanup(func() { authOutputFlags.OutputFormat = string(cli.OutputFormatTable) })

	cmd, out := newTestCommand("")
	require.NoError(t, runAuthStatus(cmd, nil))

	var report cli.StatusReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.LoggedIn)
	assert.True(t, report.HasCredentials)
	assert.Equal(t, "webapi", report.Backend)
	assert.NotEmpty(t, report.Expiry)
}

func TestAuthStatus_Table(t *testing.T) {
	useConfigDir(t, "")
	authOutputFlags.OutputFormat = string(cli.OutputFormatTable)

	cmd, out := newTestCommand("")
	require.NoError(t, runAuthStatus(cmd, nil))
	assert.Contains(t, out.String(), "Logged in")
	assert.Contains(t, out.String(), "Hotkeys: not available")
	assert.Contains(t, out.String(), "Configure API settings and login to authenticate.")
}

func TestAuthStatus_InvalidFormat(t *testing.T) {
	useConfigDir(t, "")
	authOutputFlags.OutputFormat = "xml"
	t.Cleanup(func() { authOutputFlags.OutputFormat = string(cli.OutputFormatTable) })

	cmd, _ := newTestCommand("")
	assert.Error(t, runAuthStatus(cmd, nil))
}

func TestAuthRefresh(t *testing.T) {
	spotify := newFakeSpotify(t)
	dir := useConfigDir(t, spotify.config())
	saveCredentials(t, dir)

	cmd, _ := newTestCommand("")
	err := runAuthRefresh(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))

	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1"})
	cmd, out := newTestCommand("")
	require.NoError(t, runAuthRefresh(cmd, nil))
	assert.Contains(t, out.String(), "Access token refreshed")

	tokens := oauth.NewStore(dir).LoadTokens()
	assert.Equal(t, "A2", tokens.AccessToken)
	assert.Equal(t, "R1", tokens.RefreshToken, "refresh token is kept when not rotated")
}

func TestAuthRefresh_Rejected(t *testing.T) {
	spotify := newFakeSpotify(t)
	spotify.refreshStatus.Store(400)
	dir := useConfigDir(t, spotify.config())
	saveCredentials(t, dir)
	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1"})

	cmd, _ := newTestCommand("")
	err := runAuthRefresh(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthFailed, getExitCode(err))
	assert.Contains(t, err.Error(), "Token refresh failed: 400")
}

func TestVolumeSet(t *testing.T) {
	spotify := newFakeSpotify(t)
	dir := useConfigDir(t, spotify.config())
	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1"})

	cmd, out := newTestCommand("")
	require.NoError(t, runVolumeSet(cmd, []string{"40%"}))
	assert.Contains(t, out.String(), "Spotify API volume set to 40%")
	assert.Equal(t, "40", spotify.lastPercent.Load())
}

func TestVolumeSet_ClampsOutOfRange(t *testing.T) {
	spotify := newFakeSpotify(t)
	dir := useConfigDir(t, spotify.config())
	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1"})

	cmd, out := newTestCommand("")
	require.NoError(t, runVolumeSet(cmd, []string{"150"}))
	assert.Contains(t, out.String(), "Spotify API volume set to 100%")
	assert.Equal(t, "100", spotify.lastPercent.Load())
}

func TestVolumeSet_NotLoggedIn(t *testing.T) {
	spotify := newFakeSpotify(t)
	useConfigDir(t, spotify.config())

	cmd, _ := newTestCommand("")
	err := runVolumeSet(cmd, []string{"40"})
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
	assert.Contains(t, err.Error(), "Not logged in")
	assert.Zero(t, spotify.volumeCalls.Load())
}

func TestVolumeSet_InvalidArguments(t *testing.T) {
	useConfigDir(t, "")

	cmd, _ := newTestCommand("")
	err := runVolumeSet(cmd, []string{"loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid volume")

	volumeBackend = "bluetooth"
	t.Cleanup(func() { volumeBackend = "" })
	assert.Error(t, runVolumeSet(cmd, []string{"50"}))
}

func TestVolumeProfile(t *testing.T) {
	spotify := newFakeSpotify(t)
	dir := useConfigDir(t, spotify.config())
	saveTokens(t, dir, oauth.TokenSet{AccessToken: "A1", RefreshToken: "R1"})

	cmd, out := newTestCommand("")
	require.NoError(t, runVolumeProfile(cmd, []string{"late", "night"}))
	assert.Contains(t, out.String(), "Spotify API volume set to 10%")
	assert.Equal(t, "10", spotify.lastPercent.Load())

	err := runVolumeProfile(cmd, []string{"Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "Missing"`)
}

func TestProfileList_YAML(t *testing.T) {
	spotify := newFakeSpotify(t)
	useConfigDir(t, spotify.config())

	profileOutputFlags.OutputFormat = string(cli.OutputFormatYAML)
	t.Cleanup(func() { profileOutputFlags.OutputFormat = string(cli.OutputFormatTable) })

	cmd, out := newTestCommand("")
	require.NoError(t, runProfileList(cmd, nil))
	assert.Contains(t, out.String(), "name: Quiet")
	assert.Contains(t, out.String(), "hotkey: ctrl+alt+1")
	assert.Contains(t, out.String(), "name: Late Night")
}

func TestInvalidConfig(t *testing.T) {
	useConfigDir(t, "backend: bluetooth\n")

	cmd, _ := newTestCommand("")
	err := runProfileList(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize spotivol")
}
