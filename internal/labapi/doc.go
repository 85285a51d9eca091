// Package labapi provides a typed HTTP client for the lab template service.
//
// # Endpoints
//
//	GET    /lab[?isActivate=bool]    list labs
//	GET    /lab/{id}                 single lab
//	POST   /lab                      create from CreateLabRequest
//	PUT    /lab/{id}                 update from CreateLabRequest
//	DELETE /lab/{id}                 delete, empty body
//	PUT    /lab/{id}/toggle-status   flip isActive, returns {"lab": Lab}
//
// The base URL may carry a path prefix (http://host/api); /lab is appended
// to it. Requests carry a User-Agent and a fresh X-Request-ID.
//
// # Errors
//
// Every failure is a *TransportError: network errors, non-2xx statuses and
// undecodable bodies. Error bodies are logged but not interpreted. The client
// never retries; callers decide what to do.
//
// # Filters
//
// FilterKey is both the list query (?isActivate) and the key the sync engine
// caches list snapshots under. FilterAll omits the query parameter entirely.
package labapi
