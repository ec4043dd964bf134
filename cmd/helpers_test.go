package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"spotivol/internal/oauth"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// useConfigDir points --config-path at a fresh directory holding
// configYAML, or no config file when configYAML is empty.
func useConfigDir(t *testing.T, configYAML string) string {
	t.Helper()

	dir := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o600))
	}

	previous := configPath
	configPath = dir
	t.Cleanup(func() { configPath = previous })
	return dir
}

// newTestCommand returns a command whose output is captured and whose
// input reads from input.
func newTestCommand(input string) (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(input))
	return cmd, &buf
}

func saveTokens(t *testing.T, dir string, tokens oauth.TokenSet) {
	t.Helper()
	require.NoError(t, oauth.NewStore(dir).SaveTokens(tokens))
}

func saveCredentials(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, oauth.NewStore(dir).SaveCredentials(oauth.Credentials{ClientID: "client-id", ClientSecret: "client-secret"}))
}

// fakeSpotify serves the token endpoint and the player volume endpoint.
type fakeSpotify struct {
	server        *httptest.Server
	volumeCalls   atomic.Int32
	lastPercent   atomic.Value
	refreshStatus atomic.Int32
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()

	f := &fakeSpotify{}
	f.refreshStatus.Store(http.StatusOK)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		if status := int(f.refreshStatus.Load()); status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A2","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/me/player/volume", func(w http.ResponseWriter, r *http.Request) {
		f.volumeCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer A1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"status":401,"message":"The access token expired"}}`))
			return
		}
		f.lastPercent.Store(r.URL.Query().Get("volume_percent"))
		w.WriteHeader(http.StatusNoContent)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// config returns a config.yaml pointing both endpoints at the fake.
func (f *fakeSpotify) config() string {
	return "oauth:\n" +
		"  tokenURL: " + f.server.URL + "/api/token\n" +
		"  httpTimeout: " + (5 * time.Second).String() + "\n" +
		"webAPI:\n" +
		"  baseURL: " + f.server.URL + "\n" +
		"profiles:\n" +
		"  - name: Quiet\n" +
		"    volume: 20\n" +
		"    hotkey: ctrl+alt+1\n" +
		"  - name: Late Night\n" +
		"    volume: 10\n"
}
