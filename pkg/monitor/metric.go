package monitor

import (
	"fmt"
	"strings"

	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/wire"
)

// Metric is one decoded (scope, key, value) observation from a receiver.
type Metric struct {
	Host   string
	Family device.Family
	Scope  device.Scope
	Key    string
	Value  string
}

// StoreKey returns the hash key the metric is persisted under:
// "<host>:device" or "<host>:channel:<n>".
func (m Metric) StoreKey() string {
	if m.Scope.IsChannel() {
		return fmt.Sprintf("%s:channel:%d", m.Host, m.Scope.Channel())
	}
	return m.Host + ":device"
}

// NormalizedName folds the per-side audio level keys (AUDIO_LEVEL_L/R,
// AUDIO_IN_LVL_L/R) into the single metric name AUDIO_LEVEL so dashboards
// can aggregate both families; the side moves into Side(). Other keys,
// including the peak and RMS sample fields, normalize to themselves.
func (m Metric) NormalizedName() string {
	switch m.Key {
	case "AUDIO_LEVEL_L", "AUDIO_LEVEL_R", "AUDIO_IN_LVL_L", "AUDIO_IN_LVL_R":
		return "AUDIO_LEVEL"
	}
	return m.Key
}

// Side returns "L" or "R" for side-suffixed audio keys, otherwise "".
func (m Metric) Side() string {
	if m.NormalizedName() != "AUDIO_LEVEL" {
		return ""
	}
	switch {
	case strings.HasSuffix(m.Key, "_L"):
		return "L"
	case strings.HasSuffix(m.Key, "_R"):
		return "R"
	default:
		return ""
	}
}

// fromReply converts a decoded reply frame into a metric.
func (m *Monitor) fromReply(rep wire.Reply) Metric {
	return Metric{
		Host:   m.config.Host,
		Family: m.config.Family,
		Scope:  rep.Scope,
		Key:    rep.Key,
		Value:  rep.Value,
	}
}

// fromSample expands a SAMPLE frame into one metric per field.
func (m *Monitor) fromSample(s wire.Sample) []Metric {
	out := make([]Metric, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, Metric{
			Host:   m.config.Host,
			Family: m.config.Family,
			Scope:  device.ChannelScope(s.Channel),
			Key:    f.Name,
			Value:  f.Value,
		})
	}
	return out
}
