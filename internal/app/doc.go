// Package app is the composition root of labctl.
//
// Bootstrap wires configuration, logging, the HTTP client and the sync
// engine into a Runtime that both the TUI and the CLI commands use:
//
//	config.Load ─→ Override(flags) ─→ logging.New
//	     │
//	     └─→ labapi.NewClient ─→ state.NewEngine(notifier = log + queue)
//
// Run adds the pieces only the TUI needs: saved preferences, the Bubble Tea
// program and, when refresh_interval is set, a background refresher that
// reloads the active filter and reports each outcome to the UI as a message.
//
// # Refresher
//
// The refresher waits one interval, refreshes, and repeats. After a failure
// the wait doubles per consecutive failure (2s, 4s, 8s ... capped at 30s) and
// resets on the next success, so an unreachable server is not hammered.
package app
