package device

import "fmt"

// Scope qualifies a key address: either the whole device or a single
// channel. The zero value is device scope.
type Scope struct {
	channel int
}

// DeviceScope addresses the whole unit.
var DeviceScope = Scope{}

// ChannelScope addresses one channel. The index is validated against the
// family when the scope is combined with a key in NewAddress.
func ChannelScope(n int) Scope {
	return Scope{channel: n}
}

// IsChannel reports whether the scope addresses a channel.
func (s Scope) IsChannel() bool {
	return s.channel != 0
}

// Channel returns the channel index, or 0 for device scope.
func (s Scope) Channel() int {
	return s.channel
}

// String returns "device" or "channel N".
func (s Scope) String() string {
	if s.channel == 0 {
		return "device"
	}
	return fmt.Sprintf("channel %d", s.channel)
}
