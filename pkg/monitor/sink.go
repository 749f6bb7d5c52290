package monitor

import "context"

// MetricSink receives every decoded metric. Implementations must be safe
// for concurrent use: several monitor instances may share one sink, and
// per-key overwrite is idempotent and commutative so no cross-instance
// coordination is needed.
type MetricSink interface {
	Record(ctx context.Context, m Metric) error
}

// StatusReporter receives service lifecycle signals. The monitor calls
// Status once per status change; Ready and Stopping are called by the
// owning process.
type StatusReporter interface {
	Ready()
	Status(message string)
	Stopping()
}

// NopSink discards metrics.
type NopSink struct{}

// Record implements MetricSink.
func (NopSink) Record(context.Context, Metric) error { return nil }

// NopReporter discards status signals.
type NopReporter struct{}

// Ready implements StatusReporter.
func (NopReporter) Ready() {}

// Status implements StatusReporter.
func (NopReporter) Status(string) {}

// Stopping implements StatusReporter.
func (NopReporter) Stopping() {}

// MultiSink fans each metric out to every sink in order. The first error
// is returned after all sinks have been offered the metric.
type MultiSink []MetricSink

// Record implements MetricSink.
func (s MultiSink) Record(ctx context.Context, m Metric) error {
	var first error
	for _, sink := range s {
		if err := sink.Record(ctx, m); err != nil && first == nil {
			first = err
		}
	}
	return first
}
