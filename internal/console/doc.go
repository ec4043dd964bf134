// Package console implements the interactive spotivol shell.
//
// The console is a readline loop over a small command registry. Commands
// that talk to the network (login, volume changes) run on background
// goroutines and report their outcome on the events.Bus; a single goroutine
// owned by the console drains the bus and the logging channel and prints
// above the prompt, so output never interleaves with what the user types.
//
// Hotkeys bound in the console are held by an in-process table; the press
// command fires them.
package console
