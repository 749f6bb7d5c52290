package wire

import (
	"fmt"
	"strings"

	"github.com/shuretools/shurelink/pkg/device"
)

// Verb is the command verb on the wire.
type Verb string

const (
	// Get reads a key.
	Get Verb = "GET"

	// Set writes a key.
	Set Verb = "SET"
)

// braceKeys is the set of AD4D keys whose SET values must be wrapped in an
// extra brace pair on the wire. This is a quirk of the multi-channel family
// only; P10T values are never braced outbound.
var braceKeys = map[string]bool{
	"CHAN_NAME":         true,
	"DEVICE_ID":         true,
	"GROUP_CHANNEL":     true,
	"GROUP_CHANNEL2":    true,
	"TX_DEVICE_ID":      true,
	"SLOT_TX_DEVICE_ID": true,
}

// EncodeCommand renders one outbound command line including the CRLF
// terminator. value is ignored for Get.
func EncodeCommand(verb Verb, addr device.Address, value string) string {
	var b strings.Builder
	b.WriteString("< ")
	b.WriteString(string(verb))
	b.WriteByte(' ')
	b.WriteString(addr.String())
	if verb == Set {
		b.WriteByte(' ')
		if addr.Family == device.AD4D && braceKeys[addr.Key.Name] {
			fmt.Fprintf(&b, "{%s}", value)
		} else {
			b.WriteString(value)
		}
	}
	b.WriteString(" >\r\n")
	return b.String()
}
