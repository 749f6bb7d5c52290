// Command p10tctl queries and configures Shure P10T IEM transmitters over
// the ASCII control protocol on TCP port 2202.
//
// Usage:
//
//	p10tctl [flags]
//
// Flags:
//
//	-host string           Transmitter hostname or IP (required unless -list/-discover)
//	-port int              Control port (default 2202)
//	-get                   Query a value, or everything without -key
//	-set                   Write a value (requires -key and -value)
//	-channel int           Channel index 1-2 for channel-scoped keys
//	-key string            Key name (see -list)
//	-value string          Value for -set
//	-output-format string  Output format: text, json, pretty, raw (default "text")
//	-list                  List the known keys and exit
//	-timeout duration      Overall operation timeout (default 10s)
//	-interactive           Start an interactive shell
//	-discover              Browse mDNS for receivers and exit
//
// Examples:
//
//	# Read the device name
//	p10tctl -host 192.168.1.60 -get -key DEVICE_NAME
//
//	# Dump channel 1
//	p10tctl -host 192.168.1.60 -get -channel 1
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shuretools/shurelink/internal/cli"
	"github.com/shuretools/shurelink/pkg/device"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Run(ctx, device.P10T, os.Args[1:], os.Stdout, os.Stderr))
}
