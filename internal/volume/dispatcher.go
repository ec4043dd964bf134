package volume

import (
	"context"
	"errors"
	"fmt"

	"spotivol/internal/oauth"
	"spotivol/pkg/logging"
)

// Status messages shared with the console and the MCP server.
const (
	MessageNotLoggedIn      = "Not logged in. Run 'login' first."
	MessageProcessNotFound  = "Spotify process not found. Make sure Spotify Desktop is running."
	MessageLocalUnavailable = "Local mode not available: pactl (PulseAudio/PipeWire) was not found on this system."
)

// TokenSource provides the current access token and refreshes it on demand.
// *oauth.Client implements it.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// Dispatcher applies volume requests to the selected backend.
//
// For the Web API backend a 401 response triggers exactly one token refresh
// followed by exactly one retry. Any other failure is returned as-is.
// Dispatcher holds no locks of its own, so concurrent Apply calls proceed
// independently; token consistency is guaranteed by the TokenSource.
type Dispatcher struct {
	tokens       TokenSource
	api          VolumeSetter
	local        SessionController
	processMatch string
}

// NewDispatcher creates a dispatcher. local may be nil when the local
// backend is unavailable.
func NewDispatcher(tokens TokenSource, api VolumeSetter, local SessionController, processMatch string) *Dispatcher {
	if processMatch == "" {
		processMatch = "spotify"
	}
	return &Dispatcher{
		tokens:       tokens,
		api:          api,
		local:        local,
		processMatch: processMatch,
	}
}

// LocalAvailable reports whether the local backend can be used.
func (d *Dispatcher) LocalAvailable() bool {
	return d.local != nil
}

// Apply performs req and reports the outcome. It never returns an error and
// never panics across its boundary.
func (d *Dispatcher) Apply(ctx context.Context, req VolumeRequest) (result Result) {
	attemptID := oauth.NewAttemptID()
	percent := Clamp(req.Percent)

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Volume", fmt.Errorf("%v", r), "Unexpected failure applying volume (attempt=%s)", attemptID)
			result = Result{Message: fmt.Sprintf("Unexpected error: %v", r), Kind: KindLocalFailed}
		}
		result.Backend = req.Backend
		result.Percent = percent
		result.AttemptID = attemptID

		if result.OK {
			logging.Info("Volume", "Applied %d%% via %s (source=%s attempt=%s)", percent, req.Backend, req.Source, attemptID)
		} else {
			logging.Warn("Volume", "Failed to apply %d%% via %s (source=%s attempt=%s kind=%s): %s",
				percent, req.Backend, req.Source, attemptID, result.Kind, result.Message)
		}
	}()

	switch req.Backend {
	case BackendLocal:
		return d.applyLocal(ctx, percent)
	case BackendWebAPI, "":
		req.Backend = BackendWebAPI
		return d.applyWebAPI(oauth.WithAttemptID(ctx, attemptID), percent)
	default:
		return Result{Message: fmt.Sprintf("Unknown backend %q", req.Backend), Kind: KindUnavailable}
	}
}

func (d *Dispatcher) applyLocal(ctx context.Context, percent int) Result {
	if d.local == nil {
		return Result{Message: MessageLocalUnavailable, Kind: KindUnavailable}
	}

	err := d.local.SetVolumeForProcess(ctx, d.processMatch, float64(percent)/100)
	switch {
	case err == nil:
		return Result{OK: true, Message: fmt.Sprintf("Local Spotify volume set to %d%%", percent), Kind: KindApplied}
	case errors.Is(err, ErrProcessNotFound):
		return Result{Message: MessageProcessNotFound, Kind: KindProcessNotFound}
	case errors.Is(err, ErrBackendUnavailable):
		return Result{Message: MessageLocalUnavailable, Kind: KindUnavailable}
	default:
		return Result{Message: err.Error(), Kind: KindLocalFailed}
	}
}

func (d *Dispatcher) applyWebAPI(ctx context.Context, percent int) Result {
	token := d.tokens.AccessToken()
	if token == "" {
		return Result{Message: MessageNotLoggedIn, Kind: KindNotAuthenticated}
	}

	err := d.api.SetVolume(ctx, token, percent)
	if errors.Is(err, ErrUnauthorized) {
		logging.Info("Volume", "Access token rejected, refreshing (attempt=%s)", oauth.AttemptIDFromContext(ctx))

		if refreshErr := d.tokens.Refresh(ctx); refreshErr != nil {
			return Result{
				Message: fmt.Sprintf("Token expired. Please login again. (%s)", refreshErr),
				Kind:    KindReauthRequired,
			}
		}

		// A logout may have raced the refresh.
		token = d.tokens.AccessToken()
		if token == "" {
			return Result{Message: MessageNotLoggedIn, Kind: KindNotAuthenticated}
		}
		err = d.api.SetVolume(ctx, token, percent)
	}

	return webAPIResult(err, percent)
}

func webAPIResult(err error, percent int) Result {
	if err == nil {
		return Result{OK: true, Message: fmt.Sprintf("Spotify API volume set to %d%%", percent), Kind: KindApplied}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return Result{Message: err.Error(), Kind: KindNetwork}
	}
	return Result{Message: err.Error(), Kind: KindAPIError}
}
