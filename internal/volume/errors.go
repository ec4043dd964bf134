package volume

import (
	"errors"
	"fmt"

	"spotivol/pkg/strings"
)

var (
	// ErrUnauthorized is matched by an APIError with status 401, the only
	// failure that triggers a token refresh.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProcessNotFound is returned by a SessionController when no audio
	// session of the player exists.
	ErrProcessNotFound = errors.New("player process not found")

	// ErrBackendUnavailable is returned when the local backend cannot run on
	// this system.
	ErrBackendUnavailable = errors.New("local audio backend not available")
)

// APIError is a non-success response from the Web API.
type APIError struct {
	StatusCode int

	// Message is the error.message field of the response, or the raw body.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, strings.TruncateMessage(e.Message, strings.DefaultMessageMaxLen))
}

// Is reports 401 responses as ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == 401
}

// NetworkError means the Web API could not be reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Request error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
