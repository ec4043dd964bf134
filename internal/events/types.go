package events

import (
	"time"
)

// EventType is the severity of a Message.
type EventType string

const (
	// EventTypeNormal indicates a successful or informational outcome.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates a failure the user should see.
	EventTypeWarning EventType = "Warning"
)

// EventReason identifies what happened.
type EventReason string

// Authentication reasons
const (
	ReasonLoginStarted   EventReason = "LoginStarted"
	ReasonAuthURL        EventReason = "AuthURL"
	ReasonLoginSucceeded EventReason = "LoginSucceeded"
	ReasonLoginFailed    EventReason = "LoginFailed"
	ReasonLoggedOut      EventReason = "LoggedOut"
	ReasonTokensReloaded EventReason = "TokensReloaded"
)

// Volume reasons
const (
	ReasonVolumeApplied  EventReason = "VolumeApplied"
	ReasonVolumeFailed   EventReason = "VolumeFailed"
	ReasonBackendChanged EventReason = "BackendChanged"
)

// Hotkey reasons
const (
	ReasonHotkeyBound   EventReason = "HotkeyBound"
	ReasonHotkeyUnbound EventReason = "HotkeyUnbound"
	ReasonHotkeyFailed  EventReason = "HotkeyFailed"
)

// EventData holds the values a message template may refer to.
type EventData struct {
	Profile   string
	Percent   int
	Backend   string
	Hotkey    string
	URL       string
	Message   string
	Error     string
	AttemptID string
}

// Message is one status line for the user.
type Message struct {
	Time      time.Time
	Type      EventType
	Reason    EventReason
	Text      string
	AttemptID string
}

// OK reports whether the message describes a success.
func (m Message) OK() bool {
	return m.Type == EventTypeNormal
}

// String renders the message the way the console prints it.
func (m Message) String() string {
	if m.OK() {
		return "✓ " + m.Text
	}
	return "✗ " + m.Text
}

// reasonTypes maps reasons to their default severity.
var reasonTypes = map[EventReason]EventType{
	ReasonLoginFailed:  EventTypeWarning,
	ReasonVolumeFailed: EventTypeWarning,
	ReasonHotkeyFailed: EventTypeWarning,
}

// TypeFor returns the severity of reason.
func TypeFor(reason EventReason) EventType {
	if t, ok := reasonTypes[reason]; ok {
		return t
	}
	return EventTypeNormal
}
