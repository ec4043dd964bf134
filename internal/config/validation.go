package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks a configuration for values the rest of the program cannot work with.
func Validate(cfg SpotivolConfig) error {
	var errs ValidationErrors

	switch cfg.Backend {
	case BackendWebAPI, BackendLocal:
	default:
		errs.Add("backend", fmt.Sprintf("must be %q or %q", BackendWebAPI, BackendLocal), cfg.Backend)
	}

	if _, _, err := cfg.OAuth.CallbackAddress(); err != nil {
		errs.Add("oauth.redirectURI", err.Error(), cfg.OAuth.RedirectURI)
	}
	if cfg.OAuth.AuthorizeURL == "" {
		errs.Add("oauth.authorizeURL", "is required")
	}
	if cfg.OAuth.TokenURL == "" {
		errs.Add("oauth.tokenURL", "is required")
	}
	if cfg.OAuth.CallbackTimeout <= 0 {
		errs.Add("oauth.callbackTimeout", "must be positive", cfg.OAuth.CallbackTimeout)
	}
	if cfg.WebAPI.BaseURL == "" {
		errs.Add("webAPI.baseURL", "is required")
	}

	seen := make(map[string]bool)
	for i, p := range cfg.Profiles {
		field := fmt.Sprintf("profiles[%d]", i)
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			errs.Add(field+".name", "is required")
			continue
		}
		if seen[name] {
			errs.Add(field+".name", "must be unique", p.Name)
		}
		seen[name] = true
		if p.Volume < 0 || p.Volume > 100 {
			errs.Add(field+".volume", "must be between 0 and 100", p.Volume)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
