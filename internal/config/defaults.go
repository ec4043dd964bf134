package config

import "time"

const (
	// DefaultRedirectURI is the redirect URI users register with their Spotify app.
	DefaultRedirectURI = "http://localhost:8888/callback"

	// DefaultAuthorizeURL is the provider's authorization endpoint.
	DefaultAuthorizeURL = "https://accounts.spotify.com/authorize"

	// DefaultTokenURL is the provider's token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultWebAPIBaseURL is the base URL of the Web API.
	DefaultWebAPIBaseURL = "https://api.spotify.com"

	// DefaultCallbackTimeout bounds how long the redirect listener waits for the browser.
	DefaultCallbackTimeout = 120 * time.Second

	// DefaultHTTPTimeout applies to token endpoint requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultWebAPITimeout applies to volume requests.
	DefaultWebAPITimeout = 8 * time.Second

	// DefaultProcessMatch selects the desktop player's audio session.
	DefaultProcessMatch = "spotify"
)

// DefaultScopes are the scopes needed to read and modify playback state.
var DefaultScopes = []string{"user-modify-playback-state", "user-read-playback-state"}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() SpotivolConfig {
	return SpotivolConfig{
		Backend: BackendWebAPI,
		OAuth: OAuthConfig{
			AuthorizeURL:    DefaultAuthorizeURL,
			TokenURL:        DefaultTokenURL,
			RedirectURI:     DefaultRedirectURI,
			Scopes:          append([]string(nil), DefaultScopes...),
			CallbackTimeout: DefaultCallbackTimeout,
			HTTPTimeout:     DefaultHTTPTimeout,
		},
		WebAPI: WebAPIConfig{
			BaseURL: DefaultWebAPIBaseURL,
			Timeout: DefaultWebAPITimeout,
		},
		Local: LocalConfig{
			ProcessMatch: DefaultProcessMatch,
		},
		Profiles: []Profile{
			{Name: "Profile 1", Volume: 50},
			{Name: "Profile 2", Volume: 50},
		},
	}
}
