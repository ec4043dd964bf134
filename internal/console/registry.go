package console

import (
	"context"
	"errors"
	"sort"
)

// errExit is returned by the exit command to end the loop.
var errExit = errors.New("exit")

// Command is one console command.
type Command interface {
	// Execute runs the command with the given arguments
	Execute(ctx context.Context, args []string) error

	// Usage returns the usage string for the command
	Usage() string

	// Description returns a brief description of what the command does
	Description() string

	// Completions returns possible completions for the first argument
	Completions() []string

	// Aliases returns alternative names for this command
	Aliases() []string
}

// Registry maps command names and aliases to commands.
type Registry struct {
	commands map[string]Command
	aliases  map[string]string // alias -> primary command name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds cmd under name and its aliases.
func (r *Registry) Register(name string, cmd Command) {
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases() {
		r.aliases[alias] = name
	}
}

// Get looks up a command by name or alias.
func (r *Registry) Get(name string) (Command, bool) {
	if cmd, exists := r.commands[name]; exists {
		return cmd, true
	}
	if primary, exists := r.aliases[name]; exists {
		cmd, exists := r.commands[primary]
		return cmd, exists
	}
	return nil, false
}

// List returns the primary command names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// command is a Command assembled from functions.
type command struct {
	usage       string
	description string
	aliases     []string
	completions func() []string
	run         func(ctx context.Context, args []string) error
}

func (c *command) Execute(ctx context.Context, args []string) error {
	return c.run(ctx, args)
}

func (c *command) Usage() string       { return c.usage }
func (c *command) Description() string { return c.description }
func (c *command) Aliases() []string   { return c.aliases }

func (c *command) Completions() []string {
	if c.completions == nil {
		return nil
	}
	return c.completions()
}
