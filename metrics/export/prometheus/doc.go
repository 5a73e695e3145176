// Package prometheus renders the gymdesk session and engine metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads the engine on every scrape. Session gauges come first and
// are always present; gymdesk_session_state carries one series per state, and
// gymdesk_session_info appears only while authenticated. Counters (gymdesk_*_total) and
// gymdesk_login_latency_seconds follow when engine metrics are enabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Export the credential or mutate engine state.
package prometheus
