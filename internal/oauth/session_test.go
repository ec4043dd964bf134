package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeAddress reserves a loopback port and releases it for the listener.
func freeAddress(t *testing.T) string {
	t.Helper()
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.Addr().String()
	require.NoError(t, probe.Close())
	return addr
}

type sessionFixture struct {
	provider *fakeProvider
	client   *Client
	listener ListenerConfig
	redirect string
}

func newSessionFixture(t *testing.T, timeout time.Duration) *sessionFixture {
	t.Helper()

	provider := newFakeProvider(t)
	addr := freeAddress(t)
	redirect := "http://" + addr + "/callback"

	cfg := provider.clientConfig()
	cfg.RedirectURI = redirect

	store := NewStore(t.TempDir())
	require.NoError(t, store.SaveCredentials(Credentials{ClientID: "client-id", ClientSecret: "client-secret"}))

	return &sessionFixture{
		provider: provider,
		client:   NewClient(store, cfg, WithHTTPClient(provider.server.Client())),
		listener: ListenerConfig{Address: addr, Path: "/callback", Timeout: timeout},
		redirect: redirect,
	}
}

// browserRedirecting simulates a user who approves (or denies) access: it
// follows the authorization URL's redirect_uri with the given query.
func browserRedirecting(t *testing.T, query string) (BrowserOpener, *atomic.Int32) {
	t.Helper()

	var opened atomic.Int32
	return func(authURL string) error {
		opened.Add(1)
		parsed, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		target := parsed.Query().Get("redirect_uri") + "?" + query
		go func() {
			resp, err := http.Get(target)
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}, &opened
}

func receiveOne(t *testing.T, results <-chan LoginResult) LoginResult {
	t.Helper()

	select {
	case result, ok := <-results:
		require.True(t, ok, "expected a login result")
		select {
		case _, more := <-results:
			require.False(t, more, "expected the channel to be closed after one result")
		case <-time.After(time.Second):
			t.Fatal("channel was not closed after the result")
		}
		return result
	case <-time.After(10 * time.Second):
		t.Fatal("login did not complete")
		return LoginResult{}
	}
}

func TestSession_Login_Success(t *testing.T) {
	f := newSessionFixture(t, 5*time.Second)
	f.provider.respond(http.StatusOK, map[string]interface{}{
		"access_token":  "A1",
		"refresh_token": "R1",
		"token_type":    "Bearer",
	})

	opener, opened := browserRedirecting(t, "code=ABC")
	session := NewSession(f.client, f.listener, WithBrowserOpener(opener))

	result := receiveOne(t, session.Login(context.Background()))
	assert.True(t, result.OK, result.Message)
	assert.Equal(t, MessageLoginSucceeded, result.Message)
	assert.NotEmpty(t, result.AttemptID)
	assert.NoError(t, result.Err)
	assert.Equal(t, int32(1), opened.Load())

	assert.Equal(t, "ABC", f.provider.lastForm().Get("code"))
	assert.Equal(t, "A1", f.client.Store().LoadTokens().AccessToken)
	assert.False(t, session.InProgress())
}

func TestSession_Login_MissingCredentials(t *testing.T) {
	f := newSessionFixture(t, 5*time.Second)
	require.NoError(t, f.client.ClearCredentials())

	opener, opened := browserRedirecting(t, "code=ABC")
	session := NewSession(f.client, f.listener, WithBrowserOpener(opener))

	result := receiveOne(t, session.Login(context.Background()))
	assert.False(t, result.OK)
	assert.ErrorIs(t, result.Err, ErrMissingCredentials)
	assert.Contains(t, result.Message, "configure your Spotify API credentials")
	assert.Contains(t, result.Message, f.redirect)
	assert.Zero(t, opened.Load())

	// No listener was started.
	listener, err := net.Listen("tcp", f.listener.Address)
	require.NoError(t, err)
	listener.Close()
}

func TestSession_Login_ProviderDenied(t *testing.T) {
	f := newSessionFixture(t, 5*time.Second)

	opener, _ := browserRedirecting(t, "error=access_denied")
	session := NewSession(f.client, f.listener, WithBrowserOpener(opener))

	result := receiveOne(t, session.Login(context.Background()))
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, MessageNoCodeReceived)
	assert.Contains(t, result.Message, "access_denied")
	assert.Zero(t, f.provider.calls.Load(), "no exchange without a code")
}

func TestSession_Login_ExchangeFails(t *testing.T) {
	f := newSessionFixture(t, 5*time.Second)
	f.provider.respondRaw(http.StatusBadRequest, `{"error":"invalid_grant"}`)

	opener, _ := browserRedirecting(t, "code=expired")
	session := NewSession(f.client, f.listener, WithBrowserOpener(opener))

	result := receiveOne(t, session.Login(context.Background()))
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "Token exchange failed: 400")
	assert.True(t, IsKind(result.Err, KindExchangeFailed))
	assert.False(t, f.client.IsAuthenticated())
}

func TestSession_Login_TimeoutThenRetry(t *testing.T) {
	f := newSessionFixture(t, 150*time.Millisecond)
	f.provider.respond(http.StatusOK, map[string]interface{}{"access_token": "A1", "token_type": "Bearer"})

	idle := func(string) error { return nil }
	session := NewSession(f.client, f.listener, WithBrowserOpener(idle))

	result := receiveOne(t, session.Login(context.Background()))
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, MessageNoCodeReceived)
	assert.False(t, session.InProgress())

	// A new attempt restarts the whole sequence on the same port.
	opener, _ := browserRedirecting(t, "code=ABC")
	session = NewSession(f.client, f.listener, WithBrowserOpener(opener))
	result = receiveOne(t, session.Login(context.Background()))
	assert.True(t, result.OK, result.Message)
}

func TestSession_Login_RejectsConcurrentLogin(t *testing.T) {
	f := newSessionFixture(t, 300*time.Millisecond)

	idle := func(string) error { return nil }
	session := NewSession(f.client, f.listener, WithBrowserOpener(idle))

	first := session.Login(context.Background())
	require.True(t, session.InProgress())

	second := receiveOne(t, session.Login(context.Background()))
	assert.False(t, second.OK)
	assert.Equal(t, MessageLoginInProgress, second.Message)
	assert.ErrorIs(t, second.Err, ErrLoginInProgress)

	result := receiveOne(t, first)
	assert.False(t, result.OK)
	assert.NotEqual(t, result.AttemptID, second.AttemptID)
}

func TestSession_Login_BrowserFailureSurfacesURL(t *testing.T) {
	f := newSessionFixture(t, 5*time.Second)
	f.provider.respond(http.StatusOK, map[string]interface{}{"access_token": "A1", "token_type": "Bearer"})

	var surfaced atomic.Value
	session := NewSession(f.client, f.listener,
		WithBrowserOpener(func(string) error { return errors.New("no display") }),
		WithAuthURLHandler(func(authURL string, browserErr error) {
			surfaced.Store(fmt.Sprintf("%s|%v", authURL, browserErr))
			// The user opens the URL manually and approves.
			go func() {
				resp, err := http.Get(f.redirect + "?code=MANUAL")
				if err == nil {
					resp.Body.Close()
				}
			}()
		}),
	)

	result := receiveOne(t, session.Login(context.Background()))
	assert.True(t, result.OK, result.Message)

	value, _ := surfaced.Load().(string)
	assert.Contains(t, value, "response_type=code")
	assert.Contains(t, value, "no display")
	assert.Equal(t, "MANUAL", f.provider.lastForm().Get("code"))
}

func TestSession_Login_Cancelled(t *testing.T) {
	f := newSessionFixture(t, 5*time.Second)

	session := NewSession(f.client, f.listener, WithBrowserOpener(nil))

	ctx, cancel := context.WithCancel(context.Background())
	results := session.Login(ctx)
	time.AfterFunc(50*time.Millisecond, cancel)

	result := receiveOne(t, results)
	assert.False(t, result.OK)
	assert.Equal(t, "Login cancelled", result.Message)
}
