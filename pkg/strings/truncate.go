package strings

import (
	"strings"
)

// DefaultMessageMaxLen bounds provider response bodies embedded in status messages.
const DefaultMessageMaxLen = 200

// MinTruncateLen is the minimum maxLen value for TruncateMessage.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateMessage collapses s onto a single line and shortens it to at most
// maxLen runes, ending in "..." when it was cut. Status messages are shown on
// one line in the console, so provider error bodies (often pretty-printed
// JSON) pass through here before being displayed.
//
// maxLen values below MinTruncateLen are raised to MinTruncateLen.
func TruncateMessage(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Redact masks a secret for display, keeping only its last four characters.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", 8) + string(runes[len(runes)-4:])
}
