// Package metrics exposes monitor telemetry to Prometheus. The Sink adapts
// decoded receiver observations into gauges; the Server serves them over
// HTTP for scraping.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shuretools/shurelink/pkg/monitor"
)

// Sink records observations into Prometheus collectors. Numeric values feed
// a gauge keyed by host, channel, and normalized metric name; every
// observation counts, numeric or not.
type Sink struct {
	registry *prometheus.Registry

	observations *prometheus.CounterVec
	values       *prometheus.GaugeVec
	ready        *prometheus.GaugeVec
	connects     *prometheus.CounterVec
}

// NewSink creates a sink with its own Prometheus registry, including Go
// runtime and process collectors.
func NewSink() *Sink {
	registry := prometheus.NewRegistry()

	s := &Sink{
		registry: registry,
		observations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shure_observations_total",
			Help: "Decoded observations received per host and key.",
		}, []string{"host", "key"}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shure_metric_value",
			Help: "Latest numeric value per host, channel, and metric.",
		}, []string{"host", "channel", "metric", "side"}),
		ready: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shure_monitor_ready",
			Help: "1 while the monitor is ingesting from the receiver.",
		}, []string{"host"}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shure_connects_total",
			Help: "Connections established to the receiver, including reconnects.",
		}, []string{"host"}),
	}

	registry.MustRegister(
		s.observations,
		s.values,
		s.ready,
		s.connects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// Registry returns the underlying Prometheus registry.
func (s *Sink) Registry() *prometheus.Registry {
	return s.registry
}

// Record implements monitor.MetricSink.
func (s *Sink) Record(_ context.Context, m monitor.Metric) error {
	s.observations.WithLabelValues(m.Host, m.Key).Inc()

	v, err := strconv.ParseFloat(m.Value, 64)
	if err != nil {
		return nil
	}

	channel := ""
	if m.Scope.IsChannel() {
		channel = strconv.Itoa(m.Scope.Channel())
	}
	s.values.WithLabelValues(m.Host, channel, m.NormalizedName(), m.Side()).Set(v)
	return nil
}

// Reporter wraps a StatusReporter and mirrors connectivity into the sink's
// readiness gauge and connect counter.
type Reporter struct {
	host  string
	sink  *Sink
	inner monitor.StatusReporter
}

// NewReporter returns a reporter for host that forwards to inner.
func (s *Sink) NewReporter(host string, inner monitor.StatusReporter) *Reporter {
	if inner == nil {
		inner = monitor.NopReporter{}
	}
	return &Reporter{host: host, sink: s, inner: inner}
}

// Ready implements monitor.StatusReporter.
func (r *Reporter) Ready() {
	r.sink.ready.WithLabelValues(r.host).Set(1)
	r.inner.Ready()
}

// Status implements monitor.StatusReporter. The monitor publishes
// "connected" whenever ingest starts; anything else means degraded.
func (r *Reporter) Status(msg string) {
	if msg == "connected" {
		r.sink.ready.WithLabelValues(r.host).Set(1)
		r.sink.connects.WithLabelValues(r.host).Inc()
	} else {
		r.sink.ready.WithLabelValues(r.host).Set(0)
	}
	r.inner.Status(msg)
}

// Stopping implements monitor.StatusReporter.
func (r *Reporter) Stopping() {
	r.sink.ready.WithLabelValues(r.host).Set(0)
	r.inner.Stopping()
}
