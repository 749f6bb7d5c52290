// Package render formats query results for the CLI: plain text, JSON, an
// indented pretty form, and the raw Go representation.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shuretools/shurelink/pkg/client"
	"github.com/shuretools/shurelink/pkg/device"
)

// Format selects an output rendering.
type Format string

const (
	// Text is the human-readable default.
	Text Format = "text"

	// JSON is two-space indented JSON with sorted keys.
	JSON Format = "json"

	// Pretty is an indented literal form for eyeballing structures.
	Pretty Format = "pretty"

	// Raw is the unformatted Go value representation.
	Raw Format = "raw"
)

// ParseFormat validates a CLI format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Text, JSON, Pretty, Raw:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Snapshot renders a bulk query result. Device keys come first in sorted
// order, then channels in numeric order.
func Snapshot(snap client.Snapshot, f Format) (string, error) {
	switch f {
	case JSON:
		out, err := json.MarshalIndent(snapshotMap(snap), "", "  ")
		return string(out), err
	case Pretty:
		return prettySnapshot(snap), nil
	case Raw:
		return fmt.Sprintf("%v", snapshotMap(snap)), nil
	default:
		return textSnapshot(snap), nil
	}
}

// Value renders a single-key query result.
func Value(scope device.Scope, key, value string, f Format) (string, error) {
	switch f {
	case Text:
		return value, nil
	case Raw:
		return fmt.Sprintf("%v", valueMap(scope, key, value)), nil
	case Pretty:
		fallthrough
	case JSON:
		out, err := json.MarshalIndent(valueMap(scope, key, value), "", "  ")
		return string(out), err
	default:
		return value, nil
	}
}

// NoData is printed for a well-formed query the device did not answer.
const NoData = "(no data)"

func valueMap(scope device.Scope, key, value string) map[string]any {
	m := map[string]any{key: value}
	if scope.IsChannel() {
		m["channel"] = scope.Channel()
	}
	return m
}

func snapshotMap(snap client.Snapshot) map[string]any {
	out := make(map[string]any, len(snap.Device)+len(snap.Channels))
	for k, v := range snap.Device {
		out[k] = v
	}
	for ch, keys := range snap.Channels {
		out[strconv.Itoa(ch)] = keys
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedChannels(m map[int]map[string]string) []int {
	chs := make([]int, 0, len(m))
	for ch := range m {
		chs = append(chs, ch)
	}
	sort.Ints(chs)
	return chs
}

func textSnapshot(snap client.Snapshot) string {
	if snap.Empty() {
		return NoData
	}

	var b strings.Builder
	for _, k := range sortedKeys(snap.Device) {
		fmt.Fprintf(&b, "%s: %s\n", k, snap.Device[k])
	}
	for _, ch := range sortedChannels(snap.Channels) {
		fmt.Fprintf(&b, "Channel %d:\n", ch)
		for _, k := range sortedKeys(snap.Channels[ch]) {
			fmt.Fprintf(&b, "  %s: %s\n", k, snap.Channels[ch][k])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func prettySnapshot(snap client.Snapshot) string {
	if snap.Empty() {
		return "{}"
	}

	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range sortedKeys(snap.Device) {
		fmt.Fprintf(&b, "  %q: %q,\n", k, snap.Device[k])
	}
	for _, ch := range sortedChannels(snap.Channels) {
		fmt.Fprintf(&b, "  %d: {\n", ch)
		for _, k := range sortedKeys(snap.Channels[ch]) {
			fmt.Fprintf(&b, "    %q: %q,\n", k, snap.Channels[ch][k])
		}
		b.WriteString("  },\n")
	}
	b.WriteString("}")
	return b.String()
}
