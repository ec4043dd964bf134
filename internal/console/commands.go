package console

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"spotivol/internal/events"
	"spotivol/internal/volume"
)

func (c *Console) registerCommands() {
	c.registry.Register("help", &command{
		usage:       "help [command]",
		description: "Show available commands",
		aliases:     []string{"?"},
		completions: c.registry.List,
		run:         c.help,
	})
	c.registry.Register("login", &command{
		usage:       "login",
		description: "Log in to Spotify in the browser",
		run:         c.login,
	})
	c.registry.Register("logout", &command{
		usage:       "logout",
		description: "Forget the Spotify tokens",
		run:         c.logout,
	})
	c.registry.Register("status", &command{
		usage:       "status",
		description: "Show login, backend and hotkey state",
		run:         c.status,
	})
	c.registry.Register("volume", &command{
		usage:       "volume <0-100>",
		description: "Set the Spotify volume",
		aliases:     []string{"vol"},
		run:         c.volume,
	})
	c.registry.Register("profile", &command{
		usage:       "profile list | profile apply <name>",
		description: "List profiles or apply one now",
		completions: func() []string { return []string{"list", "apply"} },
		run:         c.profile,
	})
	c.registry.Register("bind", &command{
		usage:       "bind <profile> [hotkey]",
		description: "Bind a profile to its hotkey, or to the given one",
		completions: c.profileNames,
		run:         c.bind,
	})
	c.registry.Register("unbind", &command{
		usage:       "unbind <profile>",
		description: "Remove a profile's hotkey",
		completions: c.profileNames,
		run:         c.unbind,
	})
	c.registry.Register("press", &command{
		usage:       "press <hotkey>",
		description: "Fire a bound hotkey",
		completions: c.boundHotkeys,
		run:         c.press,
	})
	c.registry.Register("backend", &command{
		usage:       "backend [webapi|local]",
		description: "Show or select the volume backend",
		aliases:     []string{"mode"},
		completions: func() []string { return []string{string(volume.BackendWebAPI), string(volume.BackendLocal)} },
		run:         c.backend,
	})
	c.registry.Register("exit", &command{
		usage:       "exit",
		description: "Leave the console",
		aliases:     []string{"quit", "q"},
		run:         func(context.Context, []string) error { return errExit },
	})
}

func (c *Console) help(ctx context.Context, args []string) error {
	if len(args) > 0 {
		cmd, ok := c.registry.Get(strings.ToLower(args[0]))
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		c.out.Line("Usage: %s", cmd.Usage())
		c.out.Line("  %s", cmd.Description())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			c.out.Line("Aliases: %s", strings.Join(aliases, ", "))
		}
		return nil
	}

	c.out.Line("Available commands:")
	for _, name := range c.registry.List() {
		cmd, _ := c.registry.Get(name)
		c.out.Line("  %-36s - %s", cmd.Usage(), cmd.Description())
	}
	c.out.Line("")
	c.out.Line("Keyboard shortcuts:")
	c.out.Line("  TAB      - Auto-complete commands and arguments")
	c.out.Line("  Ctrl+R   - Search command history")
	c.out.Line("  Ctrl+D   - Exit")
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	c.background(func() {
		c.app.Login(c.runCtx())
		c.refreshPrompt()
	})
	return nil
}

func (c *Console) logout(ctx context.Context, args []string) error {
	if err := c.app.Logout(); err != nil {
		return err
	}
	c.refreshPrompt()
	return nil
}

func (c *Console) status(ctx context.Context, args []string) error {
	st := c.app.Status()

	c.out.Line("Backend: %s", st.Backend)
	if st.HasCredentials {
		c.out.Success("API credentials configured")
	} else {
		c.out.Error("API credentials not configured (run 'spotivol credentials set')")
	}
	switch {
	case st.LoggedIn && !st.Expiry.IsZero():
		c.out.Success("Logged in (access token expires %s)", st.Expiry.Local().Format("15:04:05"))
	case st.LoggedIn:
		c.out.Success("Logged in")
	case st.LoginInProgress:
		c.out.Line("Login in progress...")
	default:
		c.out.Error("Not logged in")
	}
	for _, line := range st.Capabilities.Report() {
		c.out.Dim("%s", line)
	}

	if len(st.Hotkeys) == 0 {
		c.out.Dim("No hotkeys bound")
		return nil
	}
	profiles := make([]string, 0, len(st.Hotkeys))
	for profile := range st.Hotkeys {
		profiles = append(profiles, profile)
	}
	sort.Strings(profiles)
	for _, profile := range profiles {
		c.out.Line("Hotkey %s -> %s", strings.ToUpper(st.Hotkeys[profile]), profile)
	}
	return nil
}

func (c *Console) volume(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: volume <0-100>")
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
	if err != nil {
		return fmt.Errorf("invalid volume %q: expected a number between 0 and 100", args[0])
	}

	c.background(func() {
		c.postResult("", c.app.SetVolume(c.runCtx(), percent, "console"))
	})
	return nil
}

func (c *Console) profile(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		profiles := c.app.Profiles()
		if len(profiles) == 0 {
			c.out.Line("No profiles configured")
			return nil
		}
		status := c.app.Status()
		for _, p := range profiles {
			hotkey := p.Hotkey
			if bound, ok := status.Hotkeys[p.Name]; ok {
				hotkey = bound + " (bound)"
			}
			if hotkey == "" {
				hotkey = "-"
			}
			c.out.Line("  %-16s %3d%%  %s", p.Name, p.Volume, hotkey)
		}
		return nil
	}

	if args[0] != "apply" {
		return fmt.Errorf("usage: profile list | profile apply <name>")
	}
	name, _, err := c.splitProfile(args[1:])
	if err != nil {
		return err
	}

	c.background(func() {
		result, err := c.app.ApplyProfile(c.runCtx(), name, "console")
		if err != nil {
			c.bus.Emit(events.ReasonVolumeFailed, events.EventData{Profile: name, Error: err.Error()})
			return
		}
		c.postResult(name, result)
	})
	return nil
}

func (c *Console) bind(ctx context.Context, args []string) error {
	name, rest, err := c.splitProfile(args)
	if err != nil {
		return err
	}
	// Success and failure are reported on the event bus.
	_, _ = c.app.BindProfile(name, strings.Join(rest, ""))
	return nil
}

func (c *Console) unbind(ctx context.Context, args []string) error {
	name, _, err := c.splitProfile(args)
	if err != nil {
		return err
	}
	message, err := c.app.UnbindProfile(name)
	if err != nil {
		return err
	}
	if strings.Contains(message, "not bound") {
		c.out.Line("%s", message)
	}
	return nil
}

func (c *Console) press(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: press <hotkey>")
	}
	return c.app.Press(strings.Join(args, ""))
}

func (c *Console) backend(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.out.Line("Backend: %s", c.app.Backend())
		c.out.Line("%s", c.app.Guidance())
		return nil
	}
	backend, err := volume.ParseBackend(args[0])
	if err != nil {
		return err
	}
	c.app.SetBackend(backend)
	c.refreshPrompt()
	return nil
}

// postResult reports the outcome of a volume change on the bus.
func (c *Console) postResult(profile string, result volume.Result) {
	data := events.EventData{
		Profile:   profile,
		Percent:   result.Percent,
		Backend:   string(result.Backend),
		AttemptID: result.AttemptID,
	}
	if result.OK {
		data.Message = result.Message
		c.bus.Emit(events.ReasonVolumeApplied, data)
		return
	}
	data.Error = result.Message
	c.bus.Emit(events.ReasonVolumeFailed, data)
	if result.Kind == volume.KindReauthRequired || result.Kind == volume.KindNotAuthenticated {
		c.refreshPrompt()
	}
}

// splitProfile matches the longest leading run of args that names a
// profile, so names containing spaces need no quoting.
func (c *Console) splitProfile(args []string) (name string, rest []string, err error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("missing profile name (see 'profile list')")
	}
	profiles := c.app.Profiles()
	for i := len(args); i > 0; i-- {
		candidate := strings.Join(args[:i], " ")
		for _, p := range profiles {
			if strings.EqualFold(p.Name, candidate) {
				return p.Name, args[i:], nil
			}
		}
	}
	return "", nil, fmt.Errorf("unknown profile %q (see 'profile list')", strings.Join(args, " "))
}

func (c *Console) profileNames() []string {
	profiles := c.app.Profiles()
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}

func (c *Console) boundHotkeys() []string {
	hotkeys := c.app.Status().Hotkeys
	combos := make([]string, 0, len(hotkeys))
	for _, combo := range hotkeys {
		combos = append(combos, combo)
	}
	sort.Strings(combos)
	return combos
}
