// Package ui is the interactive lab browser built on Bubble Tea.
//
// # Layout
//
//	labctl  http://127.0.0.1:8080  [All] Active Inactive   updated 10:42:07
//	 / to search
//	 NAME          DESCRIPTION        BASE IMAGE    TIME  STATUS    CREATED
//	›Linux Basics  Shell and files    ubuntu:22.04  30m   active    2025-01-01 10:00
//	 Showing 1-10 of 23  Page 1 of 3  ‹ prev  next ›
//	 ✓ Lab created successfully
//	 / search • f cycle status filter • n new lab • ...
//
// # Data flow
//
// The model never calls the server from Update. Loads and mutations run as
// tea.Cmds against the Backend (a *state.Engine in production) and come back
// as RefreshedMsg and mutationMsg. RefreshedMsg is also what the background
// refresher sends through Program.Send, so both paths share one handler.
//
// Switching the status filter shows the cached list for that filter at once
// when it is fresh and loads it otherwise. After a successful mutation every
// cached list is stale, so the active one is fetched again.
//
// # Dialogs
//
// The create/edit and delete dialogs are driven by form.Controller. A dialog
// stays open while its request is in flight and closes only on success; a
// failed save keeps the typed draft. Cancelling with esc during a save closes
// the dialog and the late result is ignored.
//
// # Notifications
//
// Mutation outcomes are read from a notify.Queue and shown for a few seconds
// under the pager.
package ui
