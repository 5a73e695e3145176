// Package gymdesk is the session and authorization core of the gym back-office console.
//
// An [Engine] owns the console session. It restores a persisted credential at startup,
// exchanges email and password for a new one, decides from the credential's claims whether
// the operator may use the console, and keeps outgoing requests authorized while the
// session lasts.
//
// # Session lifecycle
//
// A session starts Unknown. [Engine.Initialize] resolves it from storage without touching
// the network; [Engine.Login] and [Engine.Logout] move it between Unauthenticated and
// Authenticated. Transitions run one at a time on the engine's own goroutine, so a logout
// issued during a login applies after the login completes. Consumers read
// [Engine.Session] or receive snapshots through [Engine.Subscribe].
//
// # Architecture boundaries
//
// The engine composes four replaceable parts: a [jwt.Decoder], a [permission.Policy],
// a [storage.Store] and the [api.Client] it builds over a [middleware.Binding]. None of
// them import this package.
//
// # What this package must NOT do
//
//   - Verify credential signatures on the default path (the backend is authoritative).
//   - Log or audit the raw credential.
//   - Mutate http.DefaultClient or any caller-owned client.
package gymdesk
