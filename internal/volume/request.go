package volume

import (
	"fmt"
	"math"
	"strings"
)

// Backend selects how a volume change is applied.
type Backend string

const (
	// BackendWebAPI changes the volume of the active device through the Web API.
	BackendWebAPI Backend = "webapi"

	// BackendLocal changes the volume of the local player's audio session.
	BackendLocal Backend = "local"
)

// ParseBackend accepts "webapi"/"api" and "local", case-insensitively.
func ParseBackend(value string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "webapi", "web-api", "api":
		return BackendWebAPI, nil
	case "local":
		return BackendLocal, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected webapi or local)", value)
	}
}

// Clamp limits percent to [0, 100].
func Clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ClampFloat limits percent to [0, 100] and rounds it to the nearest
// integer. Infinities clamp to the bounds; NaN yields 0.
func ClampFloat(percent float64) int {
	switch {
	case math.IsNaN(percent), percent <= 0:
		return 0
	case percent >= 100:
		return 100
	}
	return int(math.Round(percent))
}

// VolumeRequest asks for a volume change.
type VolumeRequest struct {
	// Percent is the requested volume; values outside [0, 100] are clamped.
	Percent int

	// Backend selects the backend.
	Backend Backend

	// Source names the requester for logging, e.g. "console", "hotkey", "mcp".
	Source string
}

// ResultKind classifies the outcome of an Apply.
type ResultKind int

const (
	KindApplied ResultKind = iota
	KindNotAuthenticated
	KindReauthRequired
	KindAPIError
	KindNetwork
	KindProcessNotFound
	KindUnavailable
	KindLocalFailed
)

// String returns the kind's name.
func (k ResultKind) String() string {
	switch k {
	case KindApplied:
		return "applied"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindReauthRequired:
		return "reauth_required"
	case KindAPIError:
		return "api_error"
	case KindNetwork:
		return "network"
	case KindProcessNotFound:
		return "process_not_found"
	case KindUnavailable:
		return "unavailable"
	case KindLocalFailed:
		return "local_failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of an Apply. Failures are reported here rather than
// as errors; every outcome carries a message for the user.
type Result struct {
	OK        bool
	Message   string
	Backend   Backend
	Percent   int
	Kind      ResultKind
	AttemptID string
}

// String renders the result as a status line.
func (r Result) String() string {
	if r.OK {
		return "✓ " + r.Message
	}
	return "✗ " + r.Message
}
