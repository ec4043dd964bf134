package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"spotivol/internal/app"
	"spotivol/internal/config"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable formats output as a table
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON formats output as JSON
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidateOutputFormat validates that the given format string is a supported output format.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected table, json or yaml)", format)
	}
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return text.FgGreen.Sprint("✓ " + msg)
}

// FormatError formats a failure message for CLI output
func FormatError(msg string) string {
	return text.FgRed.Sprint("✗ " + msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return text.FgYellow.Sprint("⚠ " + msg)
}

// StatusReport is the serializable form of app.Status.
type StatusReport struct {
	Backend               string            `json:"backend" yaml:"backend"`
	HasCredentials        bool              `json:"hasCredentials" yaml:"hasCredentials"`
	LoggedIn              bool              `json:"loggedIn" yaml:"loggedIn"`
	Expiry                string            `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	TokensPath            string            `json:"tokensPath" yaml:"tokensPath"`
	LocalBackendAvailable bool              `json:"localBackendAvailable" yaml:"localBackendAvailable"`
	Hotkeys               map[string]string `json:"hotkeys,omitempty" yaml:"hotkeys,omitempty"`
}

// NewStatusReport converts status for output.
func NewStatusReport(status app.Status) StatusReport {
	report := StatusReport{
		Backend:               string(status.Backend),
		HasCredentials:        status.HasCredentials,
		LoggedIn:              status.LoggedIn,
		TokensPath:            status.TokensPath,
		LocalBackendAvailable: status.Capabilities.LocalBackendAvailable,
		Hotkeys:               status.Hotkeys,
	}
	if status.LoggedIn && !status.Expiry.IsZero() {
		report.Expiry = status.Expiry.UTC().Format(time.RFC3339)
	}
	return report
}

// ProfileRow is one profile in list output.
type ProfileRow struct {
	Name   string `json:"name" yaml:"name"`
	Volume int    `json:"volume" yaml:"volume"`
	Hotkey string `json:"hotkey,omitempty" yaml:"hotkey,omitempty"`
}

// WriteStatus renders status in the requested format.
func WriteStatus(w io.Writer, format OutputFormat, status app.Status) error {
	report := NewStatusReport(status)
	switch format {
	case OutputFormatJSON:
		return writeJSON(w, report)
	case OutputFormatYAML:
		return writeYAML(w, report)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRow(table.Row{"Backend", report.Backend})
	t.AppendRow(table.Row{"API credentials", stateText(report.HasCredentials, "configured", "not configured")})
	t.AppendRow(table.Row{"Logged in", stateText(report.LoggedIn, "yes", "no")})
	if report.Expiry != "" {
		t.AppendRow(table.Row{"Access token expires", status.Expiry.Local().Format(time.RFC1123)})
	}
	t.AppendRow(table.Row{"Token file", report.TokensPath})
	t.AppendRow(table.Row{"Local backend (pactl)", stateText(report.LocalBackendAvailable, "available", "not available")})
	t.Render()
	return nil
}

// WriteProfiles renders profiles in the requested format.
func WriteProfiles(w io.Writer, format OutputFormat, profiles []config.Profile, noHeaders bool) error {
	rows := make([]ProfileRow, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, ProfileRow{Name: p.Name, Volume: p.Volume, Hotkey: p.Hotkey})
	}
	switch format {
	case OutputFormatJSON:
		return writeJSON(w, rows)
	case OutputFormatYAML:
		return writeYAML(w, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No profiles configured"))
		return nil
	}

	t := newTable(w)
	if !noHeaders {
		t.AppendHeader(table.Row{"Name", "Volume", "Hotkey"})
	}
	for _, row := range rows {
		hotkey := strings.ToUpper(row.Hotkey)
		if hotkey == "" {
			hotkey = "-"
		}
		t.AppendRow(table.Row{row.Name, fmt.Sprintf("%d%%", row.Volume), hotkey})
	}
	t.Render()
	return nil
}

// WriteKeyValues renders a sorted two-column table.
func WriteKeyValues(w io.Writer, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable(w)
	for _, k := range keys {
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(k), values[k]})
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func stateText(ok bool, yes, no string) string {
	if ok {
		return text.FgGreen.Sprint(yes)
	}
	return text.FgRed.Sprint(no)
}

func writeJSON(w io.Writer, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func writeYAML(w io.Writer, data interface{}) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to format as YAML: %w", err)
	}
	_, err = w.Write(yamlData)
	return err
}
