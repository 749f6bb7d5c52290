// Package store provides the MetricSink implementations the monitor
// daemon wires in: a Redis hash store holding the latest value per key, an
// append-only SQLite history, and a structured-log sink emitting one
// record per observation.
package store
