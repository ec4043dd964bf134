package events

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// MessageTemplateEngine renders message text for event reasons.
type MessageTemplateEngine struct {
	mu        sync.RWMutex
	templates map[EventReason]*template.Template
}

// NewMessageTemplateEngine creates an engine with the default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	engine := &MessageTemplateEngine{
		templates: make(map[EventReason]*template.Template),
	}
	engine.loadDefaultTemplates()
	return engine
}

func (e *MessageTemplateEngine) loadDefaultTemplates() {
	defaults := map[EventReason]string{
		ReasonLoginStarted:   "Opening browser for Spotify login...",
		ReasonAuthURL:        "If the browser did not open, visit: {{.URL}}",
		ReasonLoginSucceeded: "{{.Message | default \"Successfully logged in to Spotify!\"}}",
		ReasonLoginFailed:    "Failed to login: {{.Error}}",
		ReasonLoggedOut:      "Logged out from Spotify",
		ReasonTokensReloaded: "Login state changed in another spotivol process",

		ReasonVolumeApplied:  "{{.Message | default (printf \"Volume set to %d%%\" .Percent)}}",
		ReasonVolumeFailed:   "{{.Error}}",
		ReasonBackendChanged: "{{.Message | default (printf \"Backend set to %s\" .Backend)}}",

		ReasonHotkeyBound:   "{{.Profile}} bound to {{.Hotkey | upper}}",
		ReasonHotkeyUnbound: "{{.Profile}} hotkey unbound",
		ReasonHotkeyFailed:  "{{.Profile}}{{if .Hotkey}} ({{.Hotkey | upper}}){{end}}: {{.Error}}",
	}
	for reason, text := range defaults {
		if err := e.SetTemplate(reason, text); err != nil {
			panic(err)
		}
	}
}

// SetTemplate replaces the template for reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, text string) error {
	tmpl, err := template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("invalid template for %s: %w", reason, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[reason] = tmpl
	return nil
}

// Render generates the message text for reason.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	e.mu.RLock()
	tmpl, ok := e.templates[reason]
	e.mu.RUnlock()

	if !ok {
		if data.Error != "" {
			return fmt.Sprintf("%s: %s", reason, data.Error)
		}
		return string(reason)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("%s (render error: %v)", reason, err)
	}
	return buf.String()
}
