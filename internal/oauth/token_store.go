package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"spotivol/pkg/logging"
)

const (
	// TokensFileName holds the access/refresh token pair.
	TokensFileName = "spotify_tokens.json"

	// CredentialsFileName holds the client ID and secret.
	CredentialsFileName = "spotify_settings.json"
)

// Store persists credentials and tokens as two separate JSON files so that
// changing the API key pair never touches token state and vice versa.
//
// SECURITY: This store handles sensitive OAuth credentials.
//   - Files are written with 0600 permissions (owner read/write only)
//   - The storage directory is created with 0700 permissions (owner only)
//   - Token and secret values are never logged
//
// Loads never fail: a missing, unreadable or corrupt file is reported as
// "nothing stored" so that the caller can proceed as an unauthenticated first
// run. Saves replace the file atomically by writing a temporary file in the
// same directory and renaming it over the old one.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// TokensPath returns the path of the token file.
func (s *Store) TokensPath() string {
	return filepath.Join(s.dir, TokensFileName)
}

// CredentialsPath returns the path of the credentials file.
func (s *Store) CredentialsPath() string {
	return filepath.Join(s.dir, CredentialsFileName)
}

// LoadTokens returns the persisted tokens, or an empty TokenSet.
func (s *Store) LoadTokens() TokenSet {
	var tokens TokenSet
	s.load(s.TokensPath(), &tokens)
	return tokens
}

// SaveTokens replaces the persisted tokens.
func (s *Store) SaveTokens(tokens TokenSet) error {
	return s.save(s.TokensPath(), tokens)
}

// ClearTokens removes the token file. A missing file is not an error.
func (s *Store) ClearTokens() error {
	return s.remove(s.TokensPath())
}

// LoadCredentials returns the persisted credentials, or empty Credentials.
func (s *Store) LoadCredentials() Credentials {
	var creds Credentials
	s.load(s.CredentialsPath(), &creds)
	return creds
}

// SaveCredentials replaces the persisted credentials.
func (s *Store) SaveCredentials(creds Credentials) error {
	return s.save(s.CredentialsPath(), creds)
}

// ClearCredentials removes the credentials file. A missing file is not an error.
func (s *Store) ClearCredentials() error {
	return s.remove(s.CredentialsPath())
}

func (s *Store) load(path string, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- path is built from the configured state directory and a constant file name
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("TokenStore", "Failed to read %s, treating as empty: %v", path, err)
		}
		return
	}

	if err := json.Unmarshal(data, v); err != nil {
		logging.Warn("TokenStore", "Ignoring corrupt file %s: %v", path, err)
	}
}

func (s *Store) save(path string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return &StorageError{Operation: "save", Path: path, Cause: fmt.Errorf("failed to create storage directory: %w", err)}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StorageError{Operation: "save", Path: path, Cause: err}
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &StorageError{Operation: "save", Path: path, Cause: err}
	}
	tmpPath := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &StorageError{Operation: "save", Path: path, Cause: cause}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Operation: "save", Path: path, Cause: err}
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Operation: "save", Path: path, Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Operation: "save", Path: path, Cause: fmt.Errorf("failed to replace file: %w", err)}
	}

	return nil
}

func (s *Store) remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Operation: "clear", Path: path, Cause: err}
	}
	return nil
}
