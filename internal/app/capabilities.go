package app

import (
	"fmt"

	"spotivol/internal/hotkey"
	"spotivol/internal/volume"
)

// Capabilities describes which optional features work on this system.
type Capabilities struct {
	LocalBackendAvailable bool
	HotkeysAvailable      bool
}

// DetectCapabilities derives the capabilities from the collaborators that
// could be created. A nil collaborator means the feature is unavailable.
func DetectCapabilities(local volume.SessionController, registrar hotkey.Registrar) Capabilities {
	return Capabilities{
		LocalBackendAvailable: local != nil,
		HotkeysAvailable:      registrar != nil,
	}
}

// Report returns one human-readable line per capability.
func (c Capabilities) Report() []string {
	return []string{
		fmt.Sprintf("Local backend (pactl): %s", availability(c.LocalBackendAvailable)),
		fmt.Sprintf("Hotkeys: %s", availability(c.HotkeysAvailable)),
	}
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "not available"
}

// detectLocalController returns the platform's SessionController, or nil.
func detectLocalController() volume.SessionController {
	controller, err := volume.NewPulseController()
	if err != nil {
		return nil
	}
	return controller
}
