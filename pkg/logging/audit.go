package logging

import (
	"fmt"
	"strings"
)

// AuditEvent describes a security-relevant operation on credentials or tokens.
// Token values must never be placed in an AuditEvent.
type AuditEvent struct {
	// Action is what happened, e.g. "token_exchange", "token_refresh", "logout".
	Action string

	// Outcome is "success" or "failure".
	Outcome string

	// AttemptID correlates the event with a login attempt or volume request.
	AttemptID string

	// Target names the affected record, e.g. "tokens" or "credentials".
	Target string

	// Details carries non-sensitive context such as an HTTP status.
	Details string
}

// Audit logs a security audit event at INFO level with an [AUDIT] prefix.
func Audit(event AuditEvent) {
	parts := []string{"action=" + event.Action, "outcome=" + event.Outcome}
	if event.AttemptID != "" {
		parts = append(parts, "attempt="+event.AttemptID)
	}
	if event.Target != "" {
		parts = append(parts, "target="+event.Target)
	}
	if event.Details != "" {
		parts = append(parts, fmt.Sprintf("details=%q", event.Details))
	}
	Info("Audit", "[AUDIT] %s", strings.Join(parts, " "))
}
