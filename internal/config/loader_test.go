package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendWebAPI, cfg.Backend)
	assert.Equal(t, DefaultRedirectURI, cfg.OAuth.RedirectURI)
	assert.Equal(t, DefaultCallbackTimeout, cfg.OAuth.CallbackTimeout)
	assert.Equal(t, DefaultScopes, cfg.OAuth.Scopes)
	assert.Equal(t, dir, cfg.StateDir)
	assert.Len(t, cfg.Profiles, 2)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
backend: local
oauth:
  redirectURI: http://127.0.0.1:9999/cb
  callbackTimeout: 30s
local:
  processMatch: vlc
profiles:
  - name: Quiet
    volume: 15
    hotkey: ctrl+alt+q
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "http://127.0.0.1:9999/cb", cfg.OAuth.RedirectURI)
	assert.Equal(t, 30*time.Second, cfg.OAuth.CallbackTimeout)
	assert.Equal(t, DefaultTokenURL, cfg.OAuth.TokenURL, "unset fields keep their defaults")
	assert.Equal(t, "vlc", cfg.Local.ProcessMatch)
	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, Profile{Name: "Quiet", Volume: 15, Hotkey: "ctrl+alt+q"}, cfg.Profiles[0])
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("backend: [unterminated"), 0600))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("backend: bluetooth\n"), 0600))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestSaveConfig_RoundTripsProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := GetDefaultConfig()
	cfg.StateDir = dir
	cfg.Profiles = append(cfg.Profiles, Profile{Name: "Loud", Volume: 90, Hotkey: "F9"})

	require.NoError(t, SaveConfig(dir, cfg))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)

	p, ok := loaded.FindProfile("loud")
	require.True(t, ok)
	assert.Equal(t, 90, p.Volume)
	assert.Equal(t, "F9", p.Hotkey)
	assert.Equal(t, dir, loaded.StateDir)

	_, err = os.Stat(filepath.Join(dir, configFileName+".tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestCallbackAddress(t *testing.T) {
	tests := []struct {
		name        string
		redirectURI string
		wantAddr    string
		wantPath    string
		wantErr     bool
	}{
		{"default", DefaultRedirectURI, "localhost:8888", "/callback", false},
		{"no port", "http://127.0.0.1/cb", "127.0.0.1:80", "/cb", false},
		{"no path", "http://localhost:8888", "localhost:8888", "/", false},
		{"https rejected", "https://localhost:8888/callback", "", "", true},
		{"garbage", "::::", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, path, err := OAuthConfig{RedirectURI: tt.redirectURI}.CallbackAddress()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, addr)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Validate(GetDefaultConfig()))
	})

	t.Run("duplicate and out of range profiles", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Profiles = []Profile{
			{Name: "A", Volume: 10},
			{Name: "a", Volume: 101},
			{Name: "", Volume: 5},
		}

		err := Validate(cfg)
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 3)
	})
}
