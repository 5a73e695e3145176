// Package middleware attaches the console's session credential to outgoing HTTP requests.
//
// # Binding
//
// A [Binding] holds the credential of the most recent session snapshot. The session engine
// calls [Binding.Sync] after every transition; requests sent through [Binding.RoundTripper]
// or a client from [Binding.Client] read that value at send time and carry
// "Authorization: Bearer <credential>" only while the session is authenticated.
//
// # Architecture boundaries
//
// This package never decodes credentials and never talks to storage. It does not mutate
// shared client defaults: each request is cloned before headers are set.
package middleware
