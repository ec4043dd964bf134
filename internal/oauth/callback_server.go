package oauth

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"spotivol/pkg/logging"

	"github.com/Masterminds/sprig/v3"
	"github.com/go-chi/chi/v5"
)

const (
	// DefaultCallbackAddress is where the redirect listener binds by default.
	DefaultCallbackAddress = "localhost:8888"

	// DefaultCallbackPath is the path the provider redirects to.
	DefaultCallbackPath = "/callback"

	// DefaultCallbackTimeout is how long to wait for the browser redirect.
	DefaultCallbackTimeout = 120 * time.Second
)

// Result.Error values produced by the listener itself.
const (
	ErrorTimeout   = "timeout"
	ErrorCancelled = "cancelled"
	ErrorNoCode    = "no authorization code received"
)

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	successTemplate = template.Must(template.New("success").Funcs(sprig.FuncMap()).Parse(callbackSuccessHTML))
	errorTemplate   = template.Must(template.New("error").Funcs(sprig.FuncMap()).Parse(callbackErrorHTML))
)

// ListenerConfig parameterizes one redirect listener run.
type ListenerConfig struct {
	// Address is the host:port to bind, e.g. "localhost:8888".
	Address string

	// Path is the callback path, e.g. "/callback".
	Path string

	// Timeout bounds how long Wait blocks. Defaults to DefaultCallbackTimeout.
	Timeout time.Duration
}

func (c ListenerConfig) withDefaults() ListenerConfig {
	if c.Address == "" {
		c.Address = DefaultCallbackAddress
	}
	if c.Path == "" {
		c.Path = DefaultCallbackPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultCallbackTimeout
	}
	return c
}

// CallbackServer is a temporary local HTTP server for receiving the OAuth redirect.
// It accepts exactly one request on the callback path, answers the browser with
// a static page, hands the outcome to Wait and then shuts down. Requests on any
// other path get a 404 and do not complete the listener.
type CallbackServer struct {
	cfg      ListenerConfig
	server   *http.Server
	listener net.Listener
	resultCh chan AuthorizationResult
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
	done     chan struct{}
}

// NewCallbackServer creates a callback server. Nothing is bound until Start.
func NewCallbackServer(cfg ListenerConfig) *CallbackServer {
	return &CallbackServer{
		cfg:      cfg.withDefaults(),
		resultCh: make(chan AuthorizationResult, 1),
		errorCh:  make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Start binds the listening socket and begins serving. When Start returns
// without error the socket is accepting connections, so the authorization URL
// can safely be opened in a browser.
func (s *CallbackServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to start callback server on %s: %w", s.cfg.Address, err)
	}
	s.listener = listener

	notFound := func(w http.ResponseWriter, r *http.Request) {
		logging.Debug("CallbackServer", "Ignoring %s request for %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	}

	router := chi.NewRouter()
	router.Use(securityHeaders)
	router.Get(s.cfg.Path, s.handleCallback)
	if withSlash := strings.TrimSuffix(s.cfg.Path, "/") + "/"; withSlash != s.cfg.Path {
		router.Get(withSlash, s.handleCallback)
	}
	router.NotFound(notFound)
	router.MethodNotAllowed(notFound)

	s.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	logging.Debug("CallbackServer", "Listening for OAuth redirect on %s%s", listener.Addr(), s.cfg.Path)
	return nil
}

// Addr returns the bound address, which differs from the configured one when
// the configured port is 0. Empty before Start.
func (s *CallbackServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// CallbackURL returns the URL the browser must be redirected to.
func (s *CallbackServer) CallbackURL() string {
	return "http://" + s.Addr() + s.cfg.Path
}

// Wait blocks until the callback arrives, the configured timeout elapses or
// ctx is cancelled, then stops the server. It always returns a result.
func (s *CallbackServer) Wait(ctx context.Context) AuthorizationResult {
	defer s.Stop()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case result := <-s.resultCh:
		return result
	case err := <-s.errorCh:
		return AuthorizationResult{Error: "callback server failed", ErrorDescription: err.Error()}
	case <-timer.C:
		logging.Info("CallbackServer", "No OAuth redirect received within %s", s.cfg.Timeout)
		return AuthorizationResult{Error: ErrorTimeout}
	case <-ctx.Done():
		return AuthorizationResult{Error: ErrorCancelled}
	}
}

// Stop shuts down the callback server. It is safe to call more than once.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// RunOnce binds a listener, waits for one redirect and returns its outcome.
func RunOnce(ctx context.Context, cfg ListenerConfig) AuthorizationResult {
	server := NewCallbackServer(cfg)
	if err := server.Start(ctx); err != nil {
		return AuthorizationResult{Error: "callback server failed", ErrorDescription: err.Error()}
	}
	return server.Wait(ctx)
}

// securityHeaders is applied to every response, including 404s and
// repeated callbacks.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// handleCallback handles the OAuth callback request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback processes the OAuth callback request.
// This is called exactly once via sync.Once.
func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	query := r.URL.Query()

	var result AuthorizationResult
	if codes := query["code"]; len(codes) > 0 && codes[0] != "" {
		result.Code = codes[0]
	} else {
		result.Error = query.Get("error")
		result.ErrorDescription = query.Get("error_description")
		if result.Error == "" {
			result.Error = ErrorNoCode
		}
	}

	var err error
	if result.IsError() {
		w.WriteHeader(http.StatusBadRequest)
		err = errorTemplate.Execute(w, map[string]string{
			"App":         "spotivol",
			"Error":       result.Error,
			"Description": result.ErrorDescription,
		})
	} else {
		w.WriteHeader(http.StatusOK)
		err = successTemplate.Execute(w, map[string]string{"App": "spotivol"})
	}
	if err != nil {
		logging.Warn("CallbackServer", "Failed to render callback page: %v", err)
	}

	select {
	case s.resultCh <- result:
	default:
	}
}
