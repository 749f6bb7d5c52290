package cli

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shuretools/shurelink/internal/testharness"
	"github.com/shuretools/shurelink/pkg/device"
)

func run(t *testing.T, f device.Family, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	code = Run(ctx, f, args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestListExitsZeroWithoutHost(t *testing.T) {
	code, stdout, _ := run(t, device.AD4D, "--list")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "FREQUENCY")
	assert.Contains(t, stdout, "DEVICE_ID")
	assert.Contains(t, stdout, "channel 1-4")
}

func TestMissingHostFails(t *testing.T) {
	code, _, stderr := run(t, device.AD4D, "--get", "--key", "MODEL")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing --host")
}

func TestUnknownKeyFailsBeforeDialing(t *testing.T) {
	// Port 1 on localhost is closed; validation must reject the key
	// before any dial is attempted, so no transport error appears.
	code, _, stderr := run(t, device.AD4D,
		"--host", "127.0.0.1", "--port", "1", "--get", "--key", "NO_SUCH_KEY")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown key")
}

func TestChannelKeyWithoutChannelFails(t *testing.T) {
	code, _, stderr := run(t, device.AD4D,
		"--host", "127.0.0.1", "--port", "1", "--get", "--key", "FREQUENCY")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid scope")
}

func TestSetReadOnlyKeyFails(t *testing.T) {
	code, _, stderr := run(t, device.AD4D,
		"--host", "127.0.0.1", "--port", "1", "--set", "--key", "MODEL", "--value", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "read-only")
}

func TestSetWithoutValueFails(t *testing.T) {
	code, _, stderr := run(t, device.AD4D,
		"--host", "127.0.0.1", "--port", "1", "--set", "--key", "DEVICE_ID")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing --value")
}

func TestSetEmptyValueIsSent(t *testing.T) {
	// An explicit empty --value clears the key; only a missing flag is an
	// argument error.
	rcv := testharness.Start(t, func(cmd string) string { return "" })

	code, _, stderr := run(t, device.AD4D,
		"--host", rcv.Host(), "--port", strconv.Itoa(rcv.Port()),
		"--set", "--channel", "1", "--key", "CHAN_NAME", "--value", "")
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Equal(t, []string{"< SET 1 CHAN_NAME {} >"}, rcv.Commands())
}

func TestGetSingleValue(t *testing.T) {
	rcv := testharness.Start(t, func(cmd string) string {
		if cmd == "< GET 2 FREQUENCY >" {
			return "< REP 2 FREQUENCY 518.475 >"
		}
		return ""
	})

	code, stdout, stderr := run(t, device.AD4D,
		"--host", rcv.Host(), "--port", strconv.Itoa(rcv.Port()),
		"--get", "--channel", "2", "--key", "FREQUENCY")
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "518.475\n", stdout)
	assert.Equal(t, []string{"< GET 2 FREQUENCY >"}, rcv.Commands())
}

func TestGetNoDataExitsZero(t *testing.T) {
	rcv := testharness.Start(t, func(string) string { return "" })

	code, stdout, _ := run(t, device.AD4D,
		"--host", rcv.Host(), "--port", strconv.Itoa(rcv.Port()),
		"--get", "--key", "MODEL")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "(no data)")
}

func TestJSONAliasFormatsOutput(t *testing.T) {
	rcv := testharness.Start(t, func(cmd string) string {
		if cmd == "< GET MODEL >" {
			return "< REP MODEL AD4D >"
		}
		return ""
	})

	code, stdout, _ := run(t, device.AD4D,
		"--host", rcv.Host(), "--port", strconv.Itoa(rcv.Port()),
		"--get", "--key", "MODEL", "--json")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"MODEL": "AD4D"`)
}

func TestBadFormatFails(t *testing.T) {
	code, _, stderr := run(t, device.AD4D,
		"--host", "127.0.0.1", "--get", "--output-format", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown output format")
}

func TestGetBulkChannelOutOfRange(t *testing.T) {
	code, _, stderr := run(t, device.P10T,
		"--host", "127.0.0.1", "--port", "1", "--get", "--channel", "9")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, fmt.Sprintf("out of range 1-%d", device.P10T.Channels()))
}
