package device

import "fmt"

// Family identifies a receiver hardware family. The two families speak
// dialects of the same ASCII control protocol but differ in reply keyword,
// channel count, and how telemetry is obtained.
type Family int

const (
	// AD4D is the four-channel digital receiver family. It answers with
	// "REP" frames and must be actively polled for telemetry.
	AD4D Family = iota

	// P10T is the two-channel IEM transmitter family. It answers with
	// "REPORT" frames and pushes telemetry unsolicited once metering is
	// enabled.
	P10T
)

// String returns the family name as used on the CLI.
func (f Family) String() string {
	switch f {
	case AD4D:
		return "ad4d"
	case P10T:
		return "p10t"
	default:
		return "unknown"
	}
}

// ParseFamily parses a CLI family name.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "ad4d":
		return AD4D, nil
	case "p10t":
		return P10T, nil
	default:
		return 0, fmt.Errorf("unknown device family %q", s)
	}
}

// Channels returns the number of channels the family exposes. Channel
// indices are 1-based.
func (f Family) Channels() int {
	switch f {
	case AD4D:
		return 4
	case P10T:
		return 2
	default:
		return 0
	}
}

// ReplyKeyword returns the leading token of solicited reply frames.
func (f Family) ReplyKeyword() string {
	switch f {
	case P10T:
		return "REPORT"
	default:
		return "REP"
	}
}

// ValidChannel reports whether n is a legal channel index for the family.
func (f Family) ValidChannel(n int) bool {
	return n >= 1 && n <= f.Channels()
}
