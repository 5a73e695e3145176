package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/gymdesk"
	"github.com/MrEthical07/gymdesk/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// engineSource is the part of [gymdesk.Engine] the exporter reads.
type engineSource interface {
	Session() gymdesk.Session
	MetricsSnapshot() gymdesk.MetricsSnapshot
	AuditDropped() uint64
}

type counterInstrument struct {
	id         gymdesk.MetricID
	instrument metric.Int64ObservableCounter
}

type histogramInstrument struct {
	id      gymdesk.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// sessionInstruments mirror the published session snapshot.
type sessionInstruments struct {
	state         metric.Int64ObservableGauge
	authenticated metric.Int64ObservableGauge
	admin         metric.Int64ObservableGauge
	remaining     metric.Float64ObservableGauge
	info          metric.Int64ObservableGauge
}

// OTelExporter publishes the console session and engine metrics as observable
// OpenTelemetry instruments. Values are read from the source on every collection.
type OTelExporter struct {
	source       engineSource
	now          func() time.Time
	registration metric.Registration

	session      sessionInstruments
	counters     []counterInstrument
	histograms   []histogramInstrument
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers instruments on meter that read from engine on each collection.
func NewOTelExporter(meter metric.Meter, engine *gymdesk.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

func NewOTelExporterFromSource(meter metric.Meter, source engineSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source, now: time.Now}
	var observables []metric.Observable

	if err := e.registerSession(meter, &observables); err != nil {
		return nil, err
	}
	if err := e.registerEngineMetrics(meter, &observables); err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) registerSession(meter metric.Meter, observables *[]metric.Observable) error {
	var err error
	s := &e.session

	if s.state, err = meter.Int64ObservableGauge(internaldefs.SessionStateName,
		metric.WithDescription(internaldefs.SessionStateHelp)); err != nil {
		return fmt.Errorf("create gauge %s: %w", internaldefs.SessionStateName, err)
	}
	if s.authenticated, err = meter.Int64ObservableGauge(internaldefs.SessionAuthenticatedName,
		metric.WithDescription(internaldefs.SessionAuthenticatedHelp)); err != nil {
		return fmt.Errorf("create gauge %s: %w", internaldefs.SessionAuthenticatedName, err)
	}
	if s.admin, err = meter.Int64ObservableGauge(internaldefs.SessionAdminName,
		metric.WithDescription(internaldefs.SessionAdminHelp)); err != nil {
		return fmt.Errorf("create gauge %s: %w", internaldefs.SessionAdminName, err)
	}
	if s.remaining, err = meter.Float64ObservableGauge(internaldefs.CredentialRemainingName,
		metric.WithDescription(internaldefs.CredentialRemainingHelp), metric.WithUnit("s")); err != nil {
		return fmt.Errorf("create gauge %s: %w", internaldefs.CredentialRemainingName, err)
	}
	if s.info, err = meter.Int64ObservableGauge(internaldefs.SessionInfoName,
		metric.WithDescription(internaldefs.SessionInfoHelp)); err != nil {
		return fmt.Errorf("create gauge %s: %w", internaldefs.SessionInfoName, err)
	}

	*observables = append(*observables, s.state, s.authenticated, s.admin, s.remaining, s.info)
	return nil
}

func (e *OTelExporter) registerEngineMetrics(meter metric.Meter, observables *[]metric.Observable) error {
	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return fmt.Errorf("create counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, counterInstrument{id: def.ID, instrument: ins})
		*observables = append(*observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets, err := meter.Int64ObservableGauge(def.Name+"_bucket",
			metric.WithDescription(def.Help+" Cumulative count per le bound."))
		if err != nil {
			return fmt.Errorf("create gauge %s_bucket: %w", def.Name, err)
		}
		count, err := meter.Int64ObservableGauge(def.Name+"_count",
			metric.WithDescription(def.Help+" Total samples."))
		if err != nil {
			return fmt.Errorf("create gauge %s_count: %w", def.Name, err)
		}
		e.histograms = append(e.histograms, histogramInstrument{id: def.ID, buckets: buckets, count: count})
		*observables = append(*observables, buckets, count)
	}

	dropped, err := meter.Int64ObservableCounter("gymdesk_audit_dropped_total",
		metric.WithDescription("Audit events dropped by the dispatcher."))
	if err != nil {
		return fmt.Errorf("create counter gymdesk_audit_dropped_total: %w", err)
	}
	e.auditDropped = dropped
	*observables = append(*observables, dropped)
	return nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	v := internaldefs.ViewSession(e.source.Session(), e.now())
	for _, state := range internaldefs.SessionStates {
		o.ObserveInt64(e.session.state, v.StateValue(state),
			metric.WithAttributes(attribute.String("state", string(state))))
	}
	o.ObserveInt64(e.session.authenticated, v.Authenticated)
	o.ObserveInt64(e.session.admin, v.Admin)
	o.ObserveFloat64(e.session.remaining, v.Remaining)
	if v.State == gymdesk.StateAuthenticated {
		o.ObserveInt64(e.session.info, 1, metric.WithAttributes(
			attribute.String("role", v.Role),
			attribute.String("gym", v.GymID),
		))
	}

	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		if value, ok := snapshot.Counters[c.id]; ok {
			o.ObserveInt64(c.instrument, int64(value))
		}
	}
	for _, h := range e.histograms {
		raw, ok := snapshot.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, le := range internaldefs.HistogramBounds {
			o.ObserveInt64(h.buckets, int64(cumulative[i]), metric.WithAttributes(attribute.String("le", le)))
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
