package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"spotivol/pkg/logging"
)

var (
	// ErrAlreadyBound is returned when binding a profile that already has a hotkey.
	ErrAlreadyBound = errors.New("already bound")

	// ErrNoHotkey is returned when binding without a key combination.
	ErrNoHotkey = errors.New("no hotkey given")

	// ErrUnavailable is returned when no Registrar is configured.
	ErrUnavailable = errors.New("hotkeys are not available")
)

type binding struct {
	combo string
	id    ID
}

// Manager binds profiles to hotkeys on top of a Registrar. Each profile has
// at most one binding; binding twice is rejected and unbinding an unbound
// profile is a no-op.
type Manager struct {
	registrar Registrar

	mu       sync.Mutex
	bindings map[string]binding
}

// NewManager creates a manager. A nil registrar makes every Bind fail with
// ErrUnavailable.
func NewManager(registrar Registrar) *Manager {
	return &Manager{
		registrar: registrar,
		bindings:  make(map[string]binding),
	}
}

// Available reports whether hotkeys can be bound.
func (m *Manager) Available() bool {
	return m.registrar != nil
}

// Bind registers combo for profile. action runs on its own goroutine each
// time the combination is pressed, so a slow volume apply never blocks the
// hotkey source.
func (m *Manager) Bind(profile, combo string, action func()) (string, error) {
	if m.registrar == nil {
		return "", ErrUnavailable
	}
	if combo == "" {
		return "", ErrNoHotkey
	}
	normalized, err := Normalize(combo)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.bindings[profile]; ok {
		return existing.combo, fmt.Errorf("%w to %s, unbind first", ErrAlreadyBound, existing.combo)
	}
	for other, b := range m.bindings {
		if b.combo == normalized {
			return "", fmt.Errorf("%s is already used by %s", normalized, other)
		}
	}

	id, err := m.registrar.Register(normalized, func() { go action() })
	if err != nil {
		return "", fmt.Errorf("could not bind hotkey: %w", err)
	}
	m.bindings[profile] = binding{combo: normalized, id: id}

	logging.Info("Hotkey", "Bound %s to %s", normalized, profile)
	return normalized, nil
}

// Unbind removes the hotkey of profile. It reports false when nothing was bound.
func (m *Manager) Unbind(profile string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bindings[profile]
	if !ok {
		return false, nil
	}
	delete(m.bindings, profile)

	if err := m.registrar.Unregister(b.id); err != nil {
		logging.Warn("Hotkey", "Failed to unregister %s: %v", b.combo, err)
	}
	logging.Info("Hotkey", "Unbound %s from %s", b.combo, profile)
	return true, nil
}

// Bound returns the combination bound to profile.
func (m *Manager) Bound(profile string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[profile]
	return b.combo, ok
}

// Profiles returns the bound profile names, sorted.
func (m *Manager) Profiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.bindings))
	for name := range m.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnbindAll removes every binding.
func (m *Manager) UnbindAll() {
	for _, profile := range m.Profiles() {
		_, _ = m.Unbind(profile)
	}
}
