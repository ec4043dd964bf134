package hotkey

import (
	"fmt"
	"strings"
)

var modifierOrder = []string{"ctrl", "alt", "shift", "super"}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"super":   "super",
	"win":     "super",
	"cmd":     "super",
	"meta":    "super",
}

// Normalize returns the canonical form of a key combination such as
// "Ctrl+Alt+V": lower case, modifiers in a fixed order, exactly one key.
func Normalize(combo string) (string, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")

	modifiers := make(map[string]bool)
	key := ""
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return "", fmt.Errorf("invalid hotkey %q", combo)
		}
		if mod, ok := modifierAliases[part]; ok {
			modifiers[mod] = true
			continue
		}
		if key != "" {
			return "", fmt.Errorf("invalid hotkey %q: more than one key", combo)
		}
		key = part
	}
	if key == "" {
		return "", fmt.Errorf("invalid hotkey %q: no key", combo)
	}

	var out []string
	for _, mod := range modifierOrder {
		if modifiers[mod] {
			out = append(out, mod)
		}
	}
	return strings.Join(append(out, key), "+"), nil
}
