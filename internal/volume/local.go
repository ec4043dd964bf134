package volume

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
)

// SessionController sets the volume of an application's audio session.
type SessionController interface {
	// SetVolumeForProcess sets every audio session whose application name or
	// binary contains processMatch (case-insensitive) to level in [0, 1].
	// It returns ErrProcessNotFound when there is no such session.
	SetVolumeForProcess(ctx context.Context, processMatch string, level float64) error
}

// CommandRunner runs an external command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// pactl localizes its labels.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// PulseController drives PulseAudio or PipeWire sink inputs through pactl.
type PulseController struct {
	pactl string
	run   CommandRunner
}

// NewPulseController returns a controller using pactl from PATH, or
// ErrBackendUnavailable when pactl is not installed.
func NewPulseController() (*PulseController, error) {
	path, err := exec.LookPath("pactl")
	if err != nil {
		return nil, ErrBackendUnavailable
	}
	return &PulseController{pactl: path, run: runCommand}, nil
}

// NewPulseControllerWithRunner returns a controller executing commands through run.
func NewPulseControllerWithRunner(run CommandRunner) *PulseController {
	return &PulseController{pactl: "pactl", run: run}
}

// SetVolumeForProcess implements SessionController.
func (p *PulseController) SetVolumeForProcess(ctx context.Context, processMatch string, level float64) error {
	out, err := p.run(ctx, p.pactl, "list", "sink-inputs")
	if err != nil {
		return fmt.Errorf("failed to list audio sessions: %w", err)
	}

	ids := matchingSinkInputs(out, processMatch)
	if len(ids) == 0 {
		return ErrProcessNotFound
	}

	percent := int(math.Round(math.Max(0, math.Min(1, level)) * 100))
	for _, id := range ids {
		if _, err := p.run(ctx, p.pactl, "set-sink-input-volume", id, fmt.Sprintf("%d%%", percent)); err != nil {
			return fmt.Errorf("failed to set session volume: %w", err)
		}
	}
	return nil
}

// matchingSinkInputs parses "pactl list sink-inputs" output and returns the
// IDs of inputs whose application name or binary contains match.
func matchingSinkInputs(output []byte, match string) []string {
	match = strings.ToLower(match)

	var ids []string
	var current string
	matched := false

	flush := func() {
		if current != "" && matched {
			ids = append(ids, current)
		}
		current, matched = "", false
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if rest, ok := strings.CutPrefix(line, "Sink Input #"); ok {
			flush()
			current = strings.TrimSpace(rest)
			continue
		}
		if current == "" || matched {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "application.name", "application.process.binary":
			value = strings.ToLower(strings.Trim(strings.TrimSpace(value), `"`))
			if strings.Contains(value, match) {
				matched = true
			}
		}
	}
	flush()

	return ids
}
