package oauth

import (
	"errors"
	"fmt"

	"spotivol/pkg/strings"
)

var (
	// ErrMissingCredentials is returned when the client ID or secret has not been configured.
	ErrMissingCredentials = errors.New("API credentials are not configured")

	// ErrNotAuthenticated is returned when an operation needs an access token and none is held.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrLoginInProgress is returned when a login is started while another one is waiting.
	ErrLoginInProgress = errors.New("login already in progress")
)

// ErrorKind classifies an AuthError.
type ErrorKind int

const (
	// KindNetwork means the provider could not be reached.
	KindNetwork ErrorKind = iota
	// KindExchangeFailed means the provider rejected the authorization code.
	KindExchangeFailed
	// KindNoRefreshToken means a refresh was requested without a refresh token.
	KindNoRefreshToken
	// KindRefreshFailed means the provider rejected the refresh token.
	KindRefreshFailed
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindExchangeFailed:
		return "exchange_failed"
	case KindNoRefreshToken:
		return "no_refresh_token"
	case KindRefreshFailed:
		return "refresh_failed"
	default:
		return "unknown"
	}
}

// AuthError is returned by ExchangeCode and Refresh.
type AuthError struct {
	Kind ErrorKind

	// StatusCode is the provider's HTTP status, 0 when no response was received.
	StatusCode int

	// Body is the provider's response body, if any.
	Body string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch e.Kind {
	case KindExchangeFailed:
		if e.StatusCode != 0 {
			return fmt.Sprintf("Token exchange failed: %d - %s", e.StatusCode, strings.TruncateMessage(e.Body, strings.DefaultMessageMaxLen))
		}
		return fmt.Sprintf("Token exchange failed: %v", e.Err)
	case KindNoRefreshToken:
		return "No refresh token available"
	case KindRefreshFailed:
		if e.StatusCode != 0 {
			return fmt.Sprintf("Token refresh failed: %d", e.StatusCode)
		}
		return fmt.Sprintf("Token refresh failed: %v", e.Err)
	default:
		return fmt.Sprintf("Error contacting the provider: %v", e.Err)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an AuthError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// StorageError reports a failure reading or writing a persisted record.
type StorageError struct {
	Operation string // "load", "save", "clear"
	Path      string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
