// Package state keeps the local copy of the lab catalogue in step with the
// server.
//
// # Overview
//
// The package owns two things: a Cache of list snapshots keyed by
// labapi.FilterKey, and an Engine that loads those snapshots and runs server
// writes (mutations). The UI and CLI never touch the cache directly; they go
// through the Engine and render whatever Entry it hands back.
//
// # Read lifecycle
//
// Each cache entry moves through:
//
//	Empty ──Begin──→ Loading ──Write──→ Fresh
//	                    │                 │
//	                    └──Write(err)──→ Failed
//
//	Fresh/Failed ──Invalidate──→ stale ──Fetch──→ Loading
//
// Fetch serves a Fresh, non-stale entry straight from memory. Anything else
// triggers a List call. Concurrent loads of the same key share one request
// (golang.org/x/sync/singleflight), so switching back and forth between
// filters never issues duplicate calls.
//
// # Generations
//
// Every load takes a generation from a single monotonically increasing
// counter. Invalidate records the current counter as the entry's floor:
//
//	gen <= floor        issued before the invalidation → discarded
//	gen <  stored gen   older than what we already have → discarded
//
// This gives last-writer-by-completion semantics. A slow response that was
// started before a mutation can never overwrite the refetch that followed
// it. Superseded requests are not cancelled, their results are dropped.
// The singleflight key includes the floor, so a post-invalidation Fetch never
// joins a pre-invalidation flight.
//
// # Mutations
//
// Create, Update, Delete and Toggle each run one server call:
//
//	Idle → Pending → Succeeded | Failed
//
// On success every cache entry is invalidated (membership can change under
// any filter), a success notification is emitted, and the confirmed Lab is
// returned. On failure a failure notification is emitted and the cache is left
// exactly as it was. Mutations are independent; several may be pending at
// once and Pending lists them.
//
// # Concurrency
//
// All exported methods are safe for concurrent use. The Bubble Tea UI calls
// them from command goroutines and receives results as messages, which keeps
// the UI model itself single-threaded.
package state
