package app

import "spotivol/internal/volume"

// BackendGuidance returns the message shown after selecting backend.
func BackendGuidance(backend volume.Backend, caps Capabilities, loggedIn bool) string {
	switch backend {
	case volume.BackendLocal:
		if !caps.LocalBackendAvailable {
			return volume.MessageLocalUnavailable
		}
		return "Local mode selected. Hotkeys will change the Spotify desktop app volume."
	default:
		if loggedIn {
			return "Spotify Web API mode. You're logged in!"
		}
		return "Spotify Web API mode. Configure API settings and login to authenticate."
	}
}
