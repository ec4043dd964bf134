package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"spotivol/internal/app"
	"spotivol/internal/config"
	"spotivol/internal/events"
	"spotivol/internal/oauth"
	"spotivol/internal/volume"
	"spotivol/pkg/logging"
)

// StateLoginRequired is shown in the prompt while the Web API backend is
// selected and no access token is held.
const StateLoginRequired = "[LOGIN REQUIRED]"

// commandExecutionTimeout bounds synchronous commands.
const commandExecutionTimeout = 30 * time.Second

// Controller is what the console drives. *app.Application implements it.
type Controller interface {
	Login(ctx context.Context) oauth.LoginResult
	Logout() error
	Status() app.Status
	Guidance() string
	Backend() volume.Backend
	SetBackend(backend volume.Backend) string
	SetVolume(ctx context.Context, percent int, source string) volume.Result
	ApplyProfile(ctx context.Context, name, source string) (volume.Result, error)
	Profiles() []config.Profile
	BindProfile(name, combo string) (string, error)
	UnbindProfile(name string) (string, error)
	Press(combo string) error
}

// Console is the interactive read-eval-print loop.
type Console struct {
	app      Controller
	bus      *events.Bus
	logs     <-chan logging.LogEntry
	out      *Output
	registry *Registry

	historyFile string
	useUnicode  bool

	mu  sync.Mutex
	rl  *readline.Instance
	ctx context.Context

	wg sync.WaitGroup
}

// New creates a console for controller. Messages posted to bus and entries
// arriving on logs are printed while the console runs; logs may be nil.
func New(controller Controller, bus *events.Bus, logs <-chan logging.LogEntry) *Console {
	c := &Console{
		app:         controller,
		bus:         bus,
		logs:        logs,
		out:         NewOutput(os.Stdout, true),
		registry:    NewRegistry(),
		historyFile: filepath.Join(os.TempDir(), ".spotivol_history"),
		useUnicode:  detectUnicodeSupport(),
		ctx:         context.Background(),
	}
	c.registerCommands()
	return c
}

// detectUnicodeSupport checks if the terminal likely supports unicode characters.
func detectUnicodeSupport() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	if term == "" || term == "dumb" {
		return false
	}
	for _, v := range []string{os.Getenv("LANG"), os.Getenv("LC_ALL")} {
		v = strings.ToLower(v)
		if strings.Contains(v, "utf-8") || strings.Contains(v, "utf8") {
			return true
		}
	}
	return !strings.HasPrefix(term, "vt")
}

// buildPrompt renders the prompt, e.g. "spotivol webapi [LOGIN REQUIRED] » ".
func (c *Console) buildPrompt() string {
	chevron := ">"
	if c.useUnicode {
		chevron = "»"
	}

	backend := c.app.Backend()
	parts := []string{"spotivol", string(backend)}
	if backend == volume.BackendWebAPI && !c.app.Status().LoggedIn {
		parts = append(parts, StateLoginRequired)
	}
	parts = append(parts, chevron)
	return strings.Join(parts, " ") + " "
}

func (c *Console) refreshPrompt() {
	c.mu.Lock()
	rl := c.rl
	c.mu.Unlock()
	if rl != nil {
		rl.SetPrompt(c.buildPrompt())
		rl.Refresh()
	}
}

// runCtx returns the context of the running loop. Background work started
// by commands is cancelled with it.
func (c *Console) runCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// background runs fn on its own goroutine. Run waits for it before returning.
func (c *Console) background(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// executeCommand parses and runs one input line.
func (c *Console) executeCommand(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, ok := c.registry.Get(strings.ToLower(parts[0]))
	if !ok {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}

	ctx, cancel := context.WithTimeout(c.runCtx(), commandExecutionTimeout)
	defer cancel()
	return cmd.Execute(ctx, parts[1:])
}

// createCompleter builds tab completion from the registered commands.
func (c *Console) createCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range c.registry.List() {
		cmd, _ := c.registry.Get(name)
		children := make([]readline.PrefixCompleterInterface, 0)
		if cmd.Completions() != nil {
			children = append(children, readline.PcItemDynamic(func(cmd Command) func(string) []string {
				return func(string) []string { return cmd.Completions() }
			}(cmd)))
		}
		items = append(items, readline.PcItem(name, children...))
	}
	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	// block CtrlZ feature
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

// pump prints bus messages and log entries until stop is closed.
func (c *Console) pump(stop <-chan struct{}) {
	messages := c.bus.Messages()
	logs := c.logs
	for {
		select {
		case <-stop:
			return
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			c.printAbovePrompt(func() {
				if msg.OK() {
					c.out.Success("%s", msg.Text)
				} else {
					c.out.Error("%s", msg.Text)
				}
			})
			if msg.Reason == events.ReasonTokensReloaded || msg.Reason == events.ReasonLoginSucceeded {
				c.refreshPrompt()
			}
		case entry, ok := <-logs:
			if !ok {
				logs = nil
				continue
			}
			c.printAbovePrompt(func() { c.out.Dim("%s", entry.String()) })
		}
	}
}

func (c *Console) printAbovePrompt(write func()) {
	c.mu.Lock()
	rl := c.rl
	c.mu.Unlock()

	if rl != nil {
		_, _ = rl.Stdout().Write([]byte("\r\033[K"))
	}
	write()
	if rl != nil {
		rl.Refresh()
	}
}

// Run starts the loop and blocks until the user exits or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.buildPrompt(),
		HistoryFile:     c.historyFile,
		AutoComplete:    c.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	c.mu.Lock()
	c.rl = rl
	c.ctx = ctx
	c.mu.Unlock()
	c.out.SetWriter(rl.Stdout())

	stop := make(chan struct{})
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		c.pump(stop)
	}()
	defer func() {
		cancel()
		c.wg.Wait()
		close(stop)
		<-pumpDone
	}()

	c.banner()

	go func() {
		<-ctx.Done()
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		} else if errors.Is(err, io.EOF) || ctx.Err() != nil {
			c.out.Line("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		if err := c.executeCommand(strings.TrimSpace(line)); err != nil {
			if errors.Is(err, errExit) {
				c.out.Line("Goodbye!")
				return nil
			}
			c.out.Error("%v", err)
		}
	}
}

func (c *Console) banner() {
	c.out.Line("spotivol console. Type 'help' for available commands. Use TAB for completion.")
	for _, line := range c.app.Status().Capabilities.Report() {
		c.out.Dim("%s", line)
	}
	c.out.Line("%s", c.app.Guidance())
	c.out.Line("")
}
