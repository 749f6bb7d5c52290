// Command ad4dctl queries and configures Shure AD4D receivers over the
// ASCII control protocol on TCP port 2202.
//
// Usage:
//
//	ad4dctl [flags]
//
// Flags:
//
//	-host string           Receiver hostname or IP (required unless -list/-discover)
//	-port int              Control port (default 2202)
//	-get                   Query a value, or everything without -key
//	-set                   Write a value (requires -key and -value)
//	-channel int           Channel index 1-4 for channel-scoped keys
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
//	# Dump everything the receiver will answer
//	ad4dctl -host 192.168.1.50 -get
//
//	# Read one channel's frequency
//	ad4dctl -host 192.168.1.50 -get -channel 2 -key FREQUENCY
//
//	# Rename channel 1
//	ad4dctl -host 192.168.1.50 -set -channel 1 -key CHAN_NAME -value Vocals
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

	os.Exit(cli.Run(ctx, device.AD4D, os.Args[1:], os.Stdout, os.Stderr))
}
