package store

import (
	"context"
	"log/slog"

	"github.com/shuretools/shurelink/pkg/monitor"
)

// LogSink writes every observation as a structured log record. It is the
// default sink when no backing store is configured, and is handy for
// piping telemetry through journald.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing through logger. A nil logger uses
// slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Record implements monitor.MetricSink.
func (s *LogSink) Record(ctx context.Context, m monitor.Metric) error {
	attrs := []slog.Attr{
		slog.String("shure_host", m.Host),
		slog.String("shure_device", m.Family.String()),
		slog.String("shure_key", m.Key),
		slog.String("shure_value", m.Value),
		slog.String("shure_metric", m.NormalizedName()),
	}
	if m.Scope.IsChannel() {
		attrs = append(attrs, slog.Int("shure_channel", m.Scope.Channel()))
	}
	if side := m.Side(); side != "" {
		attrs = append(attrs, slog.String("shure_side", side))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "telemetry", attrs...)
	return nil
}
