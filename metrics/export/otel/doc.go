// Package otel publishes the gymdesk session and engine metrics through OpenTelemetry.
//
// [NewOTelExporter] registers observable gauges for the session snapshot
// (gymdesk_session_state by state attribute, gymdesk_session_authenticated,
// gymdesk_session_admin, gymdesk_credential_remaining_seconds, gymdesk_session_info by
// role and gym) and, while engine metrics are enabled, one counter per engine counter plus
// the login latency buckets keyed by an le attribute. One callback reads the engine on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Export the credential or mutate engine state.
package otel
