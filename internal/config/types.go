package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Backend names accepted in configuration and on the command line.
const (
	BackendWebAPI = "webapi"
	BackendLocal  = "local"
)

// SpotivolConfig is the top-level configuration structure for spotivol.
type SpotivolConfig struct {
	Backend  string       `yaml:"backend,omitempty"`  // Default backend: webapi or local (default: webapi)
	StateDir string       `yaml:"stateDir,omitempty"` // Directory holding credential and token files (default: config dir)
	OAuth    OAuthConfig  `yaml:"oauth"`
	WebAPI   WebAPIConfig `yaml:"webAPI"`
	Local    LocalConfig  `yaml:"local"`
	Profiles []Profile    `yaml:"profiles,omitempty"`
}

// OAuthConfig describes the provider endpoints and the local redirect listener.
type OAuthConfig struct {
	AuthorizeURL    string        `yaml:"authorizeURL,omitempty"`
	TokenURL        string        `yaml:"tokenURL,omitempty"`
	RedirectURI     string        `yaml:"redirectURI,omitempty"` // Must match the redirect URI registered with the provider
	Scopes          []string      `yaml:"scopes,omitempty"`
	CallbackTimeout time.Duration `yaml:"callbackTimeout,omitempty"` // How long the redirect listener waits (default: 120s)
	HTTPTimeout     time.Duration `yaml:"httpTimeout,omitempty"`
	NoBrowser       bool          `yaml:"noBrowser,omitempty"` // Print the authorization URL instead of opening a browser
}

// WebAPIConfig configures the Web API volume backend.
type WebAPIConfig struct {
	BaseURL string        `yaml:"baseURL,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LocalConfig configures the local audio-session backend.
type LocalConfig struct {
	ProcessMatch string `yaml:"processMatch,omitempty"` // Case-insensitive substring of the player's process name
}

// Profile is a named volume preset with an optional hotkey.
type Profile struct {
	Name   string `yaml:"name"`
	Volume int    `yaml:"volume"`
	Hotkey string `yaml:"hotkey,omitempty"`
}

// CallbackAddress splits the redirect URI into the address the redirect
// listener binds to and the callback path it serves.
func (o OAuthConfig) CallbackAddress() (address, path string, err error) {
	u, err := url.Parse(o.RedirectURI)
	if err != nil {
		return "", "", fmt.Errorf("invalid redirect URI %q: %w", o.RedirectURI, err)
	}
	if u.Scheme != "http" {
		return "", "", fmt.Errorf("redirect URI %q must use http", o.RedirectURI)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("redirect URI %q has no host", o.RedirectURI)
	}

	address = u.Host
	if u.Port() == "" {
		address = u.Host + ":80"
	}

	path = u.Path
	if path == "" {
		path = "/"
	}
	return address, path, nil
}

// FindProfile returns the profile with the given name (case-insensitive).
func (c SpotivolConfig) FindProfile(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Profile{}, false
}
