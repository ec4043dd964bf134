package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"spotivol/pkg/logging"
)

// ClientConfig holds the provider endpoints and the registered redirect URI.
type ClientConfig struct {
	AuthorizeURL string
	TokenURL     string
	RedirectURI  string
	Scopes       []string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for token requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client performs the authorization-code flow against the provider and owns
// the in-memory credentials and tokens.
//
// All mutations (exchange, refresh, logout, credential changes) run under a
// single operation lock, so a logout issued while a refresh is in flight waits
// for it and then clears the refreshed tokens. Readers never block on network
// calls and always observe a complete TokenSet.
//
// SECURITY: Token and secret values are never logged.
type Client struct {
	cfg        ClientConfig
	store      *Store
	httpClient *http.Client

	// opMu serializes mutating operations, including their network calls.
	opMu sync.Mutex

	mu     sync.RWMutex
	creds  Credentials
	tokens TokenSet

	refreshGroup singleflight.Group
}

// NewClient creates a client and loads any persisted credentials and tokens
// from store.
func NewClient(store *Store, cfg ClientConfig, opts ...ClientOption) *Client {
	c := &Client{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      store.LoadCredentials(),
		tokens:     store.LoadTokens(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing store.
func (c *Client) Store() *Store {
	return c.store
}

// RedirectURI returns the registered redirect URI.
func (c *Client) RedirectURI() string {
	return c.cfg.RedirectURI
}

// Credentials returns the configured credentials.
func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// HasCredentials reports whether both client ID and secret are configured.
func (c *Client) HasCredentials() bool {
	return c.Credentials().Complete()
}

// SetCredentials replaces and persists the credentials. Surrounding
// whitespace is trimmed; both values are required.
func (c *Client) SetCredentials(creds Credentials) error {
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.ClientSecret = strings.TrimSpace(creds.ClientSecret)
	if !creds.Complete() {
		return fmt.Errorf("both client ID and client secret are required")
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()

	err := c.store.SaveCredentials(creds)
	logging.Audit(logging.AuditEvent{
		Action:  "credentials_set",
		Outcome: outcome(err),
		Target:  "credentials",
	})
	if err != nil {
		return fmt.Errorf("credentials are active for this session but could not be saved: %w", err)
	}
	return nil
}

// ClearCredentials forgets the credentials in memory and on disk.
func (c *Client) ClearCredentials() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.creds = Credentials{}
	c.mu.Unlock()

	err := c.store.ClearCredentials()
	logging.Audit(logging.AuditEvent{Action: "credentials_clear", Outcome: outcome(err), Target: "credentials"})
	return err
}

// AccessToken returns the current access token, or "" when not logged in.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens.AccessToken
}

// Tokens returns a snapshot of the current token pair.
func (c *Client) Tokens() TokenSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// IsAuthenticated reports whether an access token is held.
func (c *Client) IsAuthenticated() bool {
	return c.AccessToken() != ""
}

// Reload re-reads tokens from disk, picking up a login or logout performed
// by another process.
func (c *Client) Reload() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	tokens := c.store.LoadTokens()

	c.mu.Lock()
	changed := tokens != c.tokens
	c.tokens = tokens
	c.mu.Unlock()

	if changed {
		logging.Info("OAuth", "Reloaded tokens from %s (logged in: %t)", c.store.TokensPath(), tokens.AccessToken != "")
	}
}

// AuthorizationURL returns the provider URL the user must visit to grant
// access. The URL is deterministic for a given configuration.
func (c *Client) AuthorizationURL() (string, error) {
	creds := c.Credentials()
	if creds.ClientID == "" {
		return "", ErrMissingCredentials
	}
	return c.oauth2Config(creds).AuthCodeURL(""), nil
}

// ExchangeCode trades an authorization code for tokens and persists them.
// A persistence failure is logged; the tokens remain usable in memory.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	creds := c.Credentials()
	if !creds.Complete() {
		return ErrMissingCredentials
	}

	attemptID := AttemptIDFromContext(ctx)
	logging.Debug("OAuth", "Exchanging authorization code (attempt=%s)", attemptID)

	token, err := c.oauth2Config(creds).Exchange(c.tokenContext(ctx), code)
	if err != nil {
		authErr := classifyTokenError(err, KindExchangeFailed)
		logging.Audit(logging.AuditEvent{
			Action:    "token_exchange",
			Outcome:   "failure",
			AttemptID: attemptID,
			Target:    "tokens",
			Details:   authErr.Kind.String(),
		})
		return authErr
	}

	previous := c.Tokens()
	tokens := TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = previous.RefreshToken
	}
	c.commit(tokens, "token_exchange", attemptID)
	return nil
}

// Refresh obtains a new access token using the refresh token. The refresh
// token is replaced only when the provider rotates it. Concurrent callers
// share a single provider request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, shared := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	})
	if shared {
		logging.Debug("OAuth", "Joined in-flight token refresh")
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	attemptID := AttemptIDFromContext(ctx)

	current := c.Tokens()
	if current.RefreshToken == "" {
		return &AuthError{Kind: KindNoRefreshToken}
	}

	creds := c.Credentials()
	source := c.oauth2Config(creds).TokenSource(c.tokenContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	token, err := source.Token()
	if err != nil {
		authErr := classifyTokenError(err, KindRefreshFailed)
		logging.Audit(logging.AuditEvent{
			Action:    "token_refresh",
			Outcome:   "failure",
			AttemptID: attemptID,
			Target:    "tokens",
			Details:   authErr.Kind.String(),
		})
		return authErr
	}

	tokens := TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = current.RefreshToken
	}
	c.commit(tokens, "token_refresh", attemptID)
	return nil
}

// Logout clears the tokens in memory and on disk. Credentials are kept.
// Calling Logout when not logged in is a no-op.
func (c *Client) Logout() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.tokens = TokenSet{}
	c.mu.Unlock()

	err := c.store.ClearTokens()
	logging.Audit(logging.AuditEvent{Action: "logout", Outcome: outcome(err), Target: "tokens"})
	if err != nil {
		return fmt.Errorf("logged out for this session but the token file could not be removed: %w", err)
	}
	return nil
}

// commit installs tokens and persists them. Must be called with opMu held.
func (c *Client) commit(tokens TokenSet, action, attemptID string) {
	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()

	details := ""
	if err := c.store.SaveTokens(tokens); err != nil {
		logging.Error("OAuth", err, "Failed to persist tokens, continuing with in-memory tokens")
		details = "not persisted"
	}
	logging.Audit(logging.AuditEvent{
		Action:    action,
		Outcome:   "success",
		AttemptID: attemptID,
		Target:    "tokens",
		Details:   details,
	})
}

func (c *Client) oauth2Config(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.cfg.AuthorizeURL,
			TokenURL:  c.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: c.cfg.RedirectURI,
		Scopes:      c.cfg.Scopes,
	}
}

func (c *Client) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// classifyTokenError maps an error from the token endpoint to an AuthError.
// rejected is the kind used when the provider answered with an error.
func classifyTokenError(err error, rejected ErrorKind) *AuthError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		authErr := &AuthError{Kind: rejected, Body: string(retrieveErr.Body), Err: err}
		if retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return authErr
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &AuthError{Kind: KindNetwork, Err: err}
	}

	return &AuthError{Kind: rejected, Err: err}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
