package oauth

import "time"

// Credentials identify the user's registered application at the provider.
type Credentials struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Complete reports whether both halves of the key pair are present.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// TokenSet is the access/refresh token pair issued by the provider.
type TokenSet struct {
	// AccessToken is short-lived (about an hour) and opaque.
	AccessToken string `json:"access_token,omitempty"`

	// RefreshToken is long-lived and may be rotated by the provider on refresh.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Expiry is when AccessToken expires, if the provider said so.
	Expiry time.Time `json:"expiry,omitzero"`
}

// IsZero reports whether no tokens are held.
func (t TokenSet) IsZero() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// AuthorizationResult is the single outcome of one redirect listener run.
// Exactly one of Code and Error is set.
type AuthorizationResult struct {
	// Code is the authorization code from the provider.
	Code string

	// Error is the provider's error parameter, "timeout", "cancelled" or a
	// description of why no code was received.
	Error string

	// ErrorDescription is the provider's human-readable error description, if any.
	ErrorDescription string
}

// IsError returns true if the result represents a failure.
func (r AuthorizationResult) IsError() bool {
	return r.Code == ""
}

// Failure describes the error for display.
func (r AuthorizationResult) Failure() string {
	if r.ErrorDescription != "" {
		return r.Error + ": " + r.ErrorDescription
	}
	return r.Error
}

// LoginResult is the completion of one login attempt.
type LoginResult struct {
	// AttemptID correlates log lines of one attempt.
	AttemptID string

	OK      bool
	Message string

	// Err is the underlying failure, nil on success.
	Err error
}
