// Package monitor implements the long-running telemetry monitor for one
// receiver: it owns the connection, reconnects with a fixed retry interval
// when the device goes away, and ingests telemetry in the mode the family
// requires: active polling for AD4D, passive streaming for P10T.
//
// The monitor depends only on two narrow capabilities, MetricSink and
// StatusReporter. Persistence, journald logging, service notification, and
// Prometheus counters are all adapters behind those interfaces, so the core
// loop is testable with no-op implementations and an in-process fake
// device.
//
// Every runtime failure is recoverable: the loop logs, waits, and retries
// until its context is cancelled.
package monitor
