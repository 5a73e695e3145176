package prometheus

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/gymdesk"
	"github.com/MrEthical07/gymdesk/metrics/export/internaldefs"
)

// engineSource is the part of [gymdesk.Engine] the exporter reads.
type engineSource interface {
	Session() gymdesk.Session
	MetricsSnapshot() gymdesk.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders the console session and engine metrics in Prometheus text
// exposition format.
type PrometheusExporter struct {
	source engineSource
	now    func() time.Time
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [gymdesk.Engine].
func NewPrometheusExporter(engine *gymdesk.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from any engine-shaped source.
func NewPrometheusExporterFromSource(source engineSource) *PrometheusExporter {
	return &PrometheusExporter{source: source, now: time.Now}
}

// Handler returns an http.Handler that serves Render.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the session gauges followed by the engine counters. Counters and the
// latency histogram are omitted while engine metrics are disabled.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	var b strings.Builder
	writeSession(&b, internaldefs.ViewSession(p.source.Session(), p.now()))

	snapshot := p.source.MetricsSnapshot()
	for _, def := range internaldefs.CounterDefs {
		value, ok := snapshot.Counters[def.ID]
		if !ok {
			continue
		}
		family(&b, def.Name, def.Help, "counter")
		sample(&b, def.Name, "", strconv.FormatUint(value, 10))
	}
	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		writeHistogram(&b, def, internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw)))
	}

	if dropped := p.source.AuditDropped(); dropped > 0 || len(snapshot.Counters) > 0 {
		family(&b, "gymdesk_audit_dropped_total", "Audit events dropped by the dispatcher.", "counter")
		sample(&b, "gymdesk_audit_dropped_total", "", strconv.FormatUint(dropped, 10))
	}

	return b.String()
}

func writeSession(b *strings.Builder, v internaldefs.SessionView) {
	family(b, internaldefs.SessionStateName, internaldefs.SessionStateHelp, "gauge")
	for _, state := range internaldefs.SessionStates {
		sample(b, internaldefs.SessionStateName, labels("state", string(state)), strconv.FormatInt(v.StateValue(state), 10))
	}

	family(b, internaldefs.SessionAuthenticatedName, internaldefs.SessionAuthenticatedHelp, "gauge")
	sample(b, internaldefs.SessionAuthenticatedName, "", strconv.FormatInt(v.Authenticated, 10))

	family(b, internaldefs.SessionAdminName, internaldefs.SessionAdminHelp, "gauge")
	sample(b, internaldefs.SessionAdminName, "", strconv.FormatInt(v.Admin, 10))

	family(b, internaldefs.CredentialRemainingName, internaldefs.CredentialRemainingHelp, "gauge")
	sample(b, internaldefs.CredentialRemainingName, "", strconv.FormatFloat(v.Remaining, 'f', 3, 64))

	if v.State == gymdesk.StateAuthenticated {
		family(b, internaldefs.SessionInfoName, internaldefs.SessionInfoHelp, "gauge")
		sample(b, internaldefs.SessionInfoName, labels("role", v.Role, "gym", v.GymID), "1")
	}
}

func writeHistogram(b *strings.Builder, def internaldefs.HistogramDef, cumulative [8]uint64) {
	family(b, def.Name, def.Help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		sample(b, def.Name+"_bucket", labels("le", le), strconv.FormatUint(cumulative[i], 10))
	}
	sample(b, def.Name+"_count", "", strconv.FormatUint(cumulative[len(cumulative)-1], 10))
	// buckets only; the engine does not keep a running sum
	sample(b, def.Name+"_sum", "", "0")
}

func family(b *strings.Builder, name, help, kind string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, helpEscaper.Replace(help), name, kind)
}

func sample(b *strings.Builder, name, labelSet, value string) {
	b.WriteString(name)
	b.WriteString(labelSet)
	b.WriteByte(' ')
	b.WriteString(value)
	b.WriteByte('\n')
}

// labels renders key/value pairs as {k="v",...}.
func labels(kv ...string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(kv[i])
		b.WriteString(`="`)
		b.WriteString(labelEscaper.Replace(kv[i+1]))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
)
