package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"spotivol/pkg/logging"
)

// Login result messages.
const (
	MessageLoginSucceeded  = "Successfully authenticated!"
	MessageNoCodeReceived  = "No authorization code received"
	MessageLoginInProgress = "login already in progress"
)

// CredentialsGuidance explains how to obtain API credentials for the
// given redirect URI.
func CredentialsGuidance(redirectURI string) string {
	return "You need to configure your Spotify API credentials first.\n\n" +
		"To use Spotify Web API mode, you need to create a Spotify app:\n" +
		"  1. Go to: https://developer.spotify.com/dashboard\n" +
		"  2. Click 'Create an App'\n" +
		"  3. In Settings, add Redirect URI: " + redirectURI + "\n" +
		"  4. Run 'spotivol credentials set' with your Client ID and Client Secret"
}

// AuthURLHandler is told the authorization URL of every login attempt.
// browserErr is non-nil when the browser could not be opened, in which case
// the user has to visit the URL manually.
type AuthURLHandler func(authURL string, browserErr error)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBrowserOpener sets how the authorization URL is opened. A nil opener
// disables opening a browser; the URL is then only reported through the
// AuthURLHandler.
func WithBrowserOpener(opener BrowserOpener) SessionOption {
	return func(s *Session) {
		s.openBrowser = opener
	}
}

// WithAuthURLHandler sets the hook that receives each authorization URL.
func WithAuthURLHandler(handler AuthURLHandler) SessionOption {
	return func(s *Session) {
		s.onAuthURL = handler
	}
}

// Session orchestrates interactive logins: it binds the redirect listener,
// sends the user to the provider, waits for the redirect and exchanges the
// code. At most one login runs at a time.
type Session struct {
	client      *Client
	listener    ListenerConfig
	openBrowser BrowserOpener
	onAuthURL   AuthURLHandler

	mu         sync.Mutex
	inProgress bool
}

// NewSession creates a login orchestrator for client. The listener
// configuration must match the client's registered redirect URI.
func NewSession(client *Client, listener ListenerConfig, opts ...SessionOption) *Session {
	s := &Session{
		client:      client,
		listener:    listener,
		openBrowser: OpenBrowser,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InProgress reports whether a login is currently waiting for the redirect
// or exchanging the code.
func (s *Session) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

// Login starts a login attempt. The returned channel receives exactly one
// result and is then closed. The attempt runs in the background; cancelling
// ctx aborts the wait for the redirect.
func (s *Session) Login(ctx context.Context) <-chan LoginResult {
	out := make(chan LoginResult, 1)
	attemptID := NewAttemptID()

	finish := func(result LoginResult) <-chan LoginResult {
		result.AttemptID = attemptID
		out <- result
		close(out)
		return out
	}

	if !s.client.HasCredentials() {
		logging.Info("Session", "Login requested without API credentials (attempt=%s)", attemptID)
		return finish(LoginResult{
			Message: CredentialsGuidance(s.client.RedirectURI()),
			Err:     ErrMissingCredentials,
		})
	}

	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		logging.Info("Session", "Rejected login while another is in progress (attempt=%s)", attemptID)
		return finish(LoginResult{Message: MessageLoginInProgress, Err: ErrLoginInProgress})
	}
	s.inProgress = true
	s.mu.Unlock()

	go func() {
		defer close(out)
		result := s.run(WithAttemptID(ctx, attemptID), attemptID)
		result.AttemptID = attemptID

		s.mu.Lock()
		s.inProgress = false
		s.mu.Unlock()

		out <- result
	}()

	return out
}

func (s *Session) run(ctx context.Context, attemptID string) LoginResult {
	authURL, err := s.client.AuthorizationURL()
	if err != nil {
		return LoginResult{Message: CredentialsGuidance(s.client.RedirectURI()), Err: err}
	}

	server := NewCallbackServer(s.listener)
	if err := server.Start(ctx); err != nil {
		logging.Error("Session", err, "Failed to start redirect listener (attempt=%s)", attemptID)
		return LoginResult{Message: fmt.Sprintf("Could not start login listener: %v", err), Err: err}
	}

	// The listener is bound, so the redirect cannot arrive before anyone listens.
	var browserErr error
	if s.openBrowser != nil {
		logging.Info("Session", "Opening browser for Spotify login (attempt=%s)", attemptID)
		if browserErr = s.openBrowser(authURL); browserErr != nil {
			logging.Warn("Session", "Could not open browser, visit the authorization URL manually: %v", browserErr)
		}
	} else {
		browserErr = errors.New("browser disabled")
	}
	if s.onAuthURL != nil {
		s.onAuthURL(authURL, browserErr)
	}

	auth := server.Wait(ctx)
	if auth.IsError() {
		logging.Audit(logging.AuditEvent{
			Action:    "login",
			Outcome:   "failure",
			AttemptID: attemptID,
			Details:   auth.Error,
		})
		return LoginResult{Message: loginFailureMessage(auth, s.listener), Err: errors.New(auth.Failure())}
	}

	if err := s.client.ExchangeCode(ctx, auth.Code); err != nil {
		return LoginResult{Message: err.Error(), Err: err}
	}

	logging.Info("Session", "Login completed (attempt=%s)", attemptID)
	return LoginResult{OK: true, Message: MessageLoginSucceeded}
}

func loginFailureMessage(auth AuthorizationResult, listener ListenerConfig) string {
	switch auth.Error {
	case ErrorTimeout:
		return fmt.Sprintf("%s within %s", MessageNoCodeReceived, listener.withDefaults().Timeout)
	case ErrorCancelled:
		return "Login cancelled"
	case ErrorNoCode:
		return MessageNoCodeReceived
	default:
		return fmt.Sprintf("%s (%s)", MessageNoCodeReceived, auth.Failure())
	}
}
