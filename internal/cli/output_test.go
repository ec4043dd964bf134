package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"spotivol/internal/app"
	"spotivol/internal/config"
	"spotivol/internal/volume"
)

func testStatus() app.Status {
	return app.Status{
		HasCredentials: true,
		LoggedIn:       true,
		Expiry:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Backend:        volume.BackendWebAPI,
		TokensPath:     "/home/user/.config/spotivol/spotify_tokens.json",
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"table", "json", "yaml"} {
		assert.NoError(t, ValidateOutputFormat(format))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
}

func TestWriteStatus_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, OutputFormatJSON, testStatus()))

	var report StatusReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "webapi", report.Backend)
	assert.True(t, report.LoggedIn)
	assert.Equal(t, "2026-03-01T12:00:00Z", report.Expiry)
}

func TestWriteStatus_YAML(t *testing.T) {
	status := testStatus()
	status.LoggedIn = false

	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, OutputFormatYAML, status))

	var report StatusReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))
	assert.False(t, report.LoggedIn)
	assert.Empty(t, report.Expiry, "expiry is only reported while logged in")
}

func TestWriteStatus_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, OutputFormatTable, testStatus()))

	out := buf.String()
	assert.Contains(t, out, "Backend")
	assert.Contains(t, out, "webapi")
	assert.Contains(t, out, "spotify_tokens.json")
}

func TestWriteProfiles(t *testing.T) {
	profiles := []config.Profile{{Name: "Night", Volume: 10, Hotkey: "ctrl+alt+n"}, {Name: "Day", Volume: 60}}

	var buf bytes.Buffer
	require.NoError(t, WriteProfiles(&buf, OutputFormatTable, profiles, false))
	out := buf.String()
	assert.Contains(t, out, "Night")
	assert.Contains(t, out, "10%")
	assert.Contains(t, out, "CTRL+ALT+N")

	buf.Reset()
	require.NoError(t, WriteProfiles(&buf, OutputFormatJSON, profiles, false))
	var rows []ProfileRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Equal(t, []ProfileRow{{Name: "Night", Volume: 10, Hotkey: "ctrl+alt+n"}, {Name: "Day", Volume: 60}}, rows)

	buf.Reset()
	require.NoError(t, WriteProfiles(&buf, OutputFormatTable, nil, false))
	assert.Contains(t, buf.String(), "No profiles configured")
}

func TestOutputFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var flags OutputFlags
	RegisterOutputFlags(cmd, &flags)

	require.NoError(t, cmd.Flags().Parse([]string{"-o", "json", "--no-headers"}))
	format, err := flags.Format()
	require.NoError(t, err)
	assert.Equal(t, OutputFormatJSON, format)
	assert.True(t, flags.NoHeaders)

	require.NoError(t, cmd.Flags().Parse([]string{"-o", "xml"}))
	_, err = flags.Format()
	assert.Error(t, err)
}
