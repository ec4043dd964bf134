package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spotivol/internal/config"
	"spotivol/internal/events"
	"spotivol/internal/hotkey"
	"spotivol/internal/oauth"
	"spotivol/internal/volume"
	"spotivol/pkg/logging"
)

// Application ties the loaded configuration to the shared services and holds
// the little runtime state the front ends share, such as the selected backend.
//
// Example usage:
//
//	application, err := app.NewApplication(app.NewConfig("", false))
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	result := application.SetVolume(ctx, 40, "cli")
type Application struct {
	config   *Config
	settings config.SpotivolConfig
	services *Services

	mu      sync.RWMutex
	backend volume.Backend
}

// NewApplication loads the configuration and initializes all services.
func NewApplication(cfg *Config) (*Application, error) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	settings, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	return NewApplicationWithSettings(cfg, settings)
}

// NewApplicationWithSettings initializes services for already loaded settings.
func NewApplicationWithSettings(cfg *Config, settings config.SpotivolConfig) (*Application, error) {
	services, err := InitializeServices(cfg, settings)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	backend, err := volume.ParseBackend(settings.Backend)
	if err != nil {
		backend = volume.BackendWebAPI
	}

	return &Application{
		config:   cfg,
		settings: settings,
		services: services,
		backend:  backend,
	}, nil
}

// Services returns the shared services.
func (a *Application) Services() *Services {
	return a.services
}

// Settings returns the loaded configuration.
func (a *Application) Settings() config.SpotivolConfig {
	return a.settings
}

// Start starts background services. Close undoes it.
func (a *Application) Start() error {
	return a.services.Start()
}

// Close stops background services.
func (a *Application) Close() {
	a.services.Stop()
}

// Backend returns the selected backend.
func (a *Application) Backend() volume.Backend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.backend
}

// SetBackend selects the backend for later applies and returns the guidance
// message for it.
func (a *Application) SetBackend(backend volume.Backend) string {
	a.mu.Lock()
	a.backend = backend
	a.mu.Unlock()

	guidance := BackendGuidance(backend, a.services.Capabilities, a.services.Client.IsAuthenticated())
	a.services.Bus.Emit(events.ReasonBackendChanged, events.EventData{Backend: string(backend), Message: guidance})
	return guidance
}

// SetVolume applies percent with the selected backend.
func (a *Application) SetVolume(ctx context.Context, percent int, source string) volume.Result {
	return a.services.Dispatcher.Apply(ctx, volume.VolumeRequest{
		Percent: percent,
		Backend: a.Backend(),
		Source:  source,
	})
}

// ApplyProfile applies the volume of the named profile.
func (a *Application) ApplyProfile(ctx context.Context, name, source string) (volume.Result, error) {
	profile, ok := a.settings.FindProfile(name)
	if !ok {
		return volume.Result{}, fmt.Errorf("unknown profile %q", name)
	}
	return a.SetVolume(ctx, profile.Volume, source), nil
}

// Profiles returns the configured profiles.
func (a *Application) Profiles() []config.Profile {
	return a.settings.Profiles
}

// BindProfile binds the profile's configured hotkey, or combo when given.
// Each press applies the profile in the background and posts the outcome to
// the event bus.
func (a *Application) BindProfile(name, combo string) (string, error) {
	profile, ok := a.settings.FindProfile(name)
	if !ok {
		return "", fmt.Errorf("unknown profile %q", name)
	}
	if combo == "" {
		combo = profile.Hotkey
	}

	bus := a.services.Bus
	bound, err := a.services.Hotkeys.Bind(profile.Name, combo, func() {
		result := a.SetVolume(context.Background(), profile.Volume, "hotkey")
		reason := events.ReasonVolumeApplied
		data := events.EventData{Profile: profile.Name, Percent: result.Percent, Backend: string(result.Backend), AttemptID: result.AttemptID}
		if result.OK {
			data.Message = fmt.Sprintf("%s: %s", profile.Name, result.Message)
		} else {
			reason = events.ReasonVolumeFailed
			data.Error = fmt.Sprintf("%s: %s", profile.Name, result.Message)
		}
		bus.Emit(reason, data)
	})
	if err != nil {
		bus.Emit(events.ReasonHotkeyFailed, events.EventData{Profile: profile.Name, Hotkey: combo, Error: err.Error()})
		return bound, err
	}
	bus.Emit(events.ReasonHotkeyBound, events.EventData{Profile: profile.Name, Hotkey: bound})
	return bound, nil
}

// UnbindProfile removes the profile's hotkey and returns a status message.
// Unbinding a profile without a hotkey is not an error.
func (a *Application) UnbindProfile(name string) (string, error) {
	profile, ok := a.settings.FindProfile(name)
	if !ok {
		return "", fmt.Errorf("unknown profile %q", name)
	}

	unbound, err := a.services.Hotkeys.Unbind(profile.Name)
	if err != nil {
		return "", err
	}
	if !unbound {
		return fmt.Sprintf("%s: not bound, no hotkey is currently bound", profile.Name), nil
	}
	a.services.Bus.Emit(events.ReasonHotkeyUnbound, events.EventData{Profile: profile.Name})
	return fmt.Sprintf("%s hotkey unbound", profile.Name), nil
}

// Login runs one interactive login and reports its outcome on the event bus.
// It blocks until the attempt completes.
func (a *Application) Login(ctx context.Context) oauth.LoginResult {
	bus := a.services.Bus
	if a.services.Client.HasCredentials() {
		bus.Emit(events.ReasonLoginStarted, events.EventData{})
	}

	result := <-a.services.Session.Login(ctx)
	data := events.EventData{AttemptID: result.AttemptID}
	if result.OK {
		data.Message = result.Message
		bus.Emit(events.ReasonLoginSucceeded, data)
	} else {
		data.Error = result.Message
		bus.Emit(events.ReasonLoginFailed, data)
	}
	return result
}

// Logout forgets the tokens. Credentials are kept.
func (a *Application) Logout() error {
	if err := a.services.Client.Logout(); err != nil {
		return err
	}
	a.services.Bus.Emit(events.ReasonLoggedOut, events.EventData{})
	return nil
}

// Status is a snapshot of the login and backend state.
type Status struct {
	HasCredentials  bool
	LoggedIn        bool
	LoginInProgress bool
	Expiry          time.Time
	Backend         volume.Backend
	TokensPath      string
	Capabilities    Capabilities
	Hotkeys         map[string]string
}

// Status returns the current state.
func (a *Application) Status() Status {
	services := a.services
	tokens := services.Client.Tokens()

	hotkeys := make(map[string]string)
	for _, profile := range services.Hotkeys.Profiles() {
		if combo, ok := services.Hotkeys.Bound(profile); ok {
			hotkeys[profile] = combo
		}
	}

	return Status{
		HasCredentials:  services.Client.HasCredentials(),
		LoggedIn:        tokens.AccessToken != "",
		LoginInProgress: services.Session.InProgress(),
		Expiry:          tokens.Expiry,
		Backend:         a.Backend(),
		TokensPath:      services.Store.TokensPath(),
		Capabilities:    services.Capabilities,
		Hotkeys:         hotkeys,
	}
}

// Guidance returns the guidance message for the selected backend.
func (a *Application) Guidance() string {
	return BackendGuidance(a.Backend(), a.services.Capabilities, a.services.Client.IsAuthenticated())
}

// Press fires the hotkey bound to combo as if it had been pressed.
func (a *Application) Press(combo string) error {
	if a.services.HotkeyTable == nil {
		return hotkey.ErrUnavailable
	}
	return a.services.HotkeyTable.Trigger(combo)
}
