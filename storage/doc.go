// Package storage persists the bearer credential and the cached gym identifier for the
// console with a short absolute expiry.
//
// # Backends
//
//   - [RedisStore]: shared Redis, native key TTLs.
//   - [BoltStore]: a local bbolt file; the CLI default, survives restarts.
//   - [MemoryStore]: go-memdb, process lifetime only; tests and embedded use.
//
// Every backend namespaces its keys by an origin (the API base URL's scheme and host), so two
// consoles pointed at different backends never share a credential.
//
// # Architecture boundaries
//
// A [Store] is a key/expiring-value store. It does NOT decode credentials, evaluate policy,
// or know what a session is; those belong to the engine.
package storage
