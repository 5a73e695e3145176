package internaldefs

import (
	"github.com/MrEthical07/gymdesk"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   gymdesk.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   gymdesk.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: gymdesk.MetricLoginSuccess, Name: "gymdesk_login_success_total", Help: "Logins that produced an authenticated session."},
	{ID: gymdesk.MetricLoginFailure, Name: "gymdesk_login_failure_total", Help: "Logins that failed before a policy decision."},
	{ID: gymdesk.MetricLoginDenied, Name: "gymdesk_login_denied_total", Help: "Logins rejected by the authorization policy."},
	{ID: gymdesk.MetricNetworkError, Name: "gymdesk_backend_network_error_total", Help: "Backend calls that got no HTTP response."},
	{ID: gymdesk.MetricProtocolError, Name: "gymdesk_backend_protocol_error_total", Help: "Backend calls answered with a non-2xx status."},
	{ID: gymdesk.MetricLogout, Name: "gymdesk_logout_total", Help: "Logout operations."},
	{ID: gymdesk.MetricRestoreSuccess, Name: "gymdesk_restore_success_total", Help: "Sessions restored from storage at initialization."},
	{ID: gymdesk.MetricRestoreFailure, Name: "gymdesk_restore_failure_total", Help: "Initializations that ended unauthenticated."},
	{ID: gymdesk.MetricCredentialRevoked, Name: "gymdesk_credential_revoked_total", Help: "Stored credentials cleared as undecodable or denied."},
}

var HistogramDefs = []HistogramDef{
	{ID: gymdesk.MetricLoginLatency, Name: "gymdesk_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's latency buckets, in seconds.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
