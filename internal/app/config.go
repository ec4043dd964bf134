package app

import (
	"net/http"

	"spotivol/internal/oauth"
	"spotivol/internal/volume"
)

// Config holds the application runtime configuration
type Config struct {
	// ConfigPath is the directory holding config.yaml. Empty means ~/.config/spotivol.
	ConfigPath string

	// Interactive enables the console-only parts: hotkeys and the token watcher.
	Interactive bool

	// OnAuthURL receives the authorization URL of every login attempt.
	// When nil, the URL is posted to the event bus if the browser could not
	// be opened.
	OnAuthURL oauth.AuthURLHandler

	// BrowserOpener overrides how the authorization URL is opened.
	BrowserOpener oauth.BrowserOpener

	// HTTPClient overrides the client used for token requests.
	HTTPClient *http.Client

	// SessionController overrides local backend detection.
	SessionController volume.SessionController
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, interactive bool) *Config {
	return &Config{
		ConfigPath:  configPath,
		Interactive: interactive,
	}
}
