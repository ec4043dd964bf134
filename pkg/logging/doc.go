// Package logging provides the structured logging used throughout spotivol.
//
// It is a thin layer over Go's slog package that tags every entry with a
// subsystem name and supports two output modes.
//
// # CLI mode
//
// One-shot commands log straight to a writer through a slog text handler:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("OAuth", "Loaded credentials from %s", path)
//	logging.Error("Volume", err, "Web API call failed")
//
// # Console mode
//
// The interactive console owns the terminal. Background goroutines must not
// write to it directly, so entries are delivered on a channel instead and the
// console goroutine prints them between prompts:
//
//	entries := logging.InitForConsole(logging.LevelInfo)
//	defer logging.CloseConsoleChannel()
//
// # Audit logging
//
// Token and credential changes are recorded with Audit. Audit events never
// contain token values.
//
//	logging.Audit(logging.AuditEvent{Action: "token_refresh", Outcome: "success", Target: "tokens"})
package logging
