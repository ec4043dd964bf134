// Package events carries status messages from background work to the single
// goroutine that owns the terminal.
//
// Logins, volume applies, hotkey presses and token reloads all run on their
// own goroutines. Instead of printing directly they post a Message to a Bus;
// the interactive console drains the bus and prints each message on its own
// line, prefixed with ✓ or ✗.
//
// Message text is produced by MessageTemplateEngine from an EventReason and
// EventData so that every component words the same outcome the same way.
//
// Usage:
//
//	bus := events.NewBus(64)
//	bus.Emit(events.ReasonVolumeApplied, events.EventData{Percent: 40, Backend: "webapi"})
//	for msg := range bus.Messages() {
//		fmt.Println(msg)
//	}
package events
