package app

import (
	"fmt"
	"net/http"

	"spotivol/internal/config"
	"spotivol/internal/events"
	"spotivol/internal/hotkey"
	"spotivol/internal/oauth"
	"spotivol/internal/volume"
	"spotivol/pkg/logging"
)

// Services holds the components shared by every front end (CLI commands,
// the console and the MCP server). There is exactly one oauth.Client per
// process; everything that needs tokens goes through it.
type Services struct {
	Store      *oauth.Store
	Client     *oauth.Client
	Session    *oauth.Session
	Dispatcher *volume.Dispatcher

	// Hotkeys is always set; without a registrar every Bind fails.
	Hotkeys *hotkey.Manager

	// HotkeyTable is the registrar behind Hotkeys in interactive mode, nil otherwise.
	HotkeyTable *hotkey.Table

	// Watcher reloads tokens changed by other processes. Nil unless interactive.
	Watcher *oauth.TokenWatcher

	Bus          *events.Bus
	Capabilities Capabilities
}

// InitializeServices wires the components for settings.
func InitializeServices(cfg *Config, settings config.SpotivolConfig) (*Services, error) {
	address, path, err := settings.OAuth.CallbackAddress()
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(events.DefaultBusSize)

	store := oauth.NewStore(settings.StateDir)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: settings.OAuth.HTTPTimeout}
	}
	client := oauth.NewClient(store, oauth.ClientConfig{
		AuthorizeURL: settings.OAuth.AuthorizeURL,
		TokenURL:     settings.OAuth.TokenURL,
		RedirectURI:  settings.OAuth.RedirectURI,
		Scopes:       settings.OAuth.Scopes,
	}, oauth.WithHTTPClient(httpClient))

	opener := cfg.BrowserOpener
	if opener == nil && !settings.OAuth.NoBrowser {
		opener = oauth.OpenBrowser
	}
	onAuthURL := cfg.OnAuthURL
	if onAuthURL == nil {
		onAuthURL = func(authURL string, browserErr error) {
			if browserErr != nil {
				bus.Emit(events.ReasonAuthURL, events.EventData{URL: authURL})
			}
		}
	}
	session := oauth.NewSession(client, oauth.ListenerConfig{
		Address: address,
		Path:    path,
		Timeout: settings.OAuth.CallbackTimeout,
	}, oauth.WithBrowserOpener(opener), oauth.WithAuthURLHandler(onAuthURL))

	local := cfg.SessionController
	if local == nil {
		local = detectLocalController()
	}

	dispatcher := volume.NewDispatcher(
		client,
		volume.NewWebAPI(settings.WebAPI.BaseURL, settings.WebAPI.Timeout),
		local,
		settings.Local.ProcessMatch,
	)

	services := &Services{
		Store:      store,
		Client:     client,
		Session:    session,
		Dispatcher: dispatcher,
		Bus:        bus,
	}

	var registrar hotkey.Registrar
	if cfg.Interactive {
		services.HotkeyTable = hotkey.NewTable()
		registrar = services.HotkeyTable
		services.Watcher = oauth.NewTokenWatcher(client, 0, func() {
			bus.Emit(events.ReasonTokensReloaded, events.EventData{})
		})
	}
	services.Hotkeys = hotkey.NewManager(registrar)
	services.Capabilities = DetectCapabilities(local, registrar)

	logging.Debug("Bootstrap", "Services initialized (state=%s local=%t hotkeys=%t)",
		settings.StateDir, services.Capabilities.LocalBackendAvailable, services.Capabilities.HotkeysAvailable)
	return services, nil
}

// Start starts background components.
func (s *Services) Start() error {
	if s.Watcher != nil {
		if err := s.Watcher.Start(); err != nil {
			return fmt.Errorf("failed to start token watcher: %w", err)
		}
	}
	return nil
}

// Stop releases background components.
func (s *Services) Stop() {
	s.Hotkeys.UnbindAll()
	if s.Watcher != nil {
		if err := s.Watcher.Stop(); err != nil {
			logging.Warn("Bootstrap", "Error stopping token watcher: %v", err)
		}
	}
}
