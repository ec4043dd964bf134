package hotkey

import (
	"errors"
	"fmt"
	"sync"
)

// ID identifies a registration.
type ID int

// Registrar registers key combinations with the system.
type Registrar interface {
	// Register arranges for fn to be called whenever combo is pressed.
	Register(combo string, fn func()) (ID, error)

	// Unregister removes a registration.
	Unregister(id ID) error
}

// ErrUnknownHotkey is returned by Table.Trigger for a combination nobody registered.
var ErrUnknownHotkey = errors.New("no action bound to this hotkey")

// Table is an in-process Registrar. Combinations are fired with Trigger,
// e.g. from the console's "press" command.
type Table struct {
	mu      sync.Mutex
	nextID  ID
	byID    map[ID]string
	byCombo map[string]func()
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		byID:    make(map[ID]string),
		byCombo: make(map[string]func()),
	}
}

// Register implements Registrar.
func (t *Table) Register(combo string, fn func()) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byCombo[combo]; exists {
		return 0, fmt.Errorf("hotkey %s is already registered", combo)
	}
	t.nextID++
	t.byID[t.nextID] = combo
	t.byCombo[combo] = fn
	return t.nextID, nil
}

// Unregister implements Registrar.
func (t *Table) Unregister(id ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	combo, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("unknown hotkey registration %d", id)
	}
	delete(t.byID, id)
	delete(t.byCombo, combo)
	return nil
}

// Trigger fires the action registered for combo.
func (t *Table) Trigger(combo string) error {
	normalized, err := Normalize(combo)
	if err != nil {
		return err
	}

	t.mu.Lock()
	fn, ok := t.byCombo[normalized]
	t.mu.Unlock()

	if !ok {
		return ErrUnknownHotkey
	}
	fn()
	return nil
}
