// Package app wires spotivol together.
//
// NewApplication loads config.yaml, creates the single oauth.Client of the
// process and builds the login Session, the volume Dispatcher, the hotkey
// Manager and the event Bus on top of it. Every front end (one-shot CLI
// commands, the interactive console and the MCP server) drives the same
// Application, so a login performed in one place is immediately visible to
// volume changes made in another.
//
// Interactive mode additionally creates the in-process hotkey table and a
// token watcher that picks up logins and logouts made by other spotivol
// processes sharing the same state directory.
package app
