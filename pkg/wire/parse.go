package wire

import (
	"strconv"
	"strings"

	"github.com/shuretools/shurelink/pkg/device"
)

// Reply is one decoded solicited or unsolicited (scope, key, value) frame.
type Reply struct {
	Scope device.Scope
	Key   string
	Value string
}

// SampleField is one metering field from a SAMPLE frame.
type SampleField struct {
	Name  string
	Value string
}

// Sample is one decoded per-channel metering frame.
type Sample struct {
	Channel int
	Fields  []SampleField
}

// sampleFieldNames is the fixed field order of a SAMPLE frame. Truncated
// frames carry a prefix of this list.
var sampleFieldNames = []string{
	"CHANNEL_QUALITY",
	"AUDIO_LED_BITMAP",
	"AUDIO_LEVEL_PEAK",
	"AUDIO_LEVEL_RMS",
	"ANTENNA_STATUS",
	"RSSI_LED_BITMAP_A",
	"RSSI_A",
	"RSSI_LED_BITMAP_B",
	"RSSI_B",
}

// Kind classifies an inbound line by its leading token.
type Kind int

const (
	// KindUnknown is a line that matches no known frame shape.
	KindUnknown Kind = iota

	// KindReply is a solicited reply or unsolicited report frame.
	KindReply

	// KindSample is a per-channel metering frame.
	KindSample
)

// tokenize strips the `<`/`>` framing and splits the interior on
// whitespace. The frame ends at the first `>`: values never contain one, so
// anything past it is a glued-on next frame and must not leak into this
// one. Devices sometimes drop the trailing `>` on the last frame of a
// burst, so it is optional.
func tokenize(line string) []string {
	s := strings.TrimSpace(line)
	if i := strings.IndexByte(s, '>'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "<")
	return strings.Fields(s)
}

// Classify inspects the leading token of a line. Reply keyword matching is
// per family (REP vs REPORT).
func Classify(f device.Family, line string) Kind {
	tok := tokenize(line)
	if len(tok) == 0 {
		return KindUnknown
	}
	switch tok[0] {
	case "SAMPLE":
		return KindSample
	case f.ReplyKeyword():
		return KindReply
	default:
		return KindUnknown
	}
}

// ParseReply decodes a REP/REPORT frame. It returns ok=false for any line
// that is not a well-formed reply for the family, including frames carrying
// the device's ERR marker, which signal protocol-level errors and are
// dropped silently.
func ParseReply(f device.Family, line string) (Reply, bool) {
	tok := tokenize(line)
	if len(tok) < 2 || tok[0] != f.ReplyKeyword() {
		return Reply{}, false
	}
	tok = tok[1:]

	// The ERR marker check runs on this frame's own tokens, after the
	// line has been truncated at the frame boundary.
	for _, t := range tok {
		if t == "ERR" {
			return Reply{}, false
		}
	}

	scope := device.DeviceScope
	if n, err := strconv.Atoi(tok[0]); err == nil {
		if !f.ValidChannel(n) {
			return Reply{}, false
		}
		scope = device.ChannelScope(n)
		tok = tok[1:]
		if len(tok) == 0 {
			return Reply{}, false
		}
	}

	key := tok[0]

	// The value is the remainder of the line; braced values may contain
	// spaces, so rejoin before stripping the brace pair.
	value := strings.Join(tok[1:], " ")
	value = stripBraces(value)

	return Reply{Scope: scope, Key: key, Value: value}, true
}

// stripBraces removes exactly one matching outer brace pair. An unbraced
// value passes through unchanged, as does an unbalanced one.
func stripBraces(s string) string {
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseSample decodes a `< SAMPLE <ch> ALL f1 ... >` metering frame. A
// truncated frame yields only the fields present; extra trailing fields are
// ignored. Both conditions are normal on a half-duplex link and are not
// errors.
func ParseSample(line string) (Sample, bool) {
	tok := tokenize(line)
	if len(tok) < 3 || tok[0] != "SAMPLE" || tok[2] != "ALL" {
		return Sample{}, false
	}

	ch, err := strconv.Atoi(tok[1])
	if err != nil || ch < 1 {
		return Sample{}, false
	}

	values := tok[3:]
	if len(values) > len(sampleFieldNames) {
		values = values[:len(sampleFieldNames)]
	}

	fields := make([]SampleField, 0, len(values))
	for i, v := range values {
		fields = append(fields, SampleField{Name: sampleFieldNames[i], Value: v})
	}

	return Sample{Channel: ch, Fields: fields}, true
}
