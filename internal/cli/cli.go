// Package cli implements the shared command surface of the per-family
// control tools. Both binaries parse the same flag set; only the device
// family differs.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shuretools/shurelink/pkg/client"
	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/discovery"
	"github.com/shuretools/shurelink/pkg/render"
)

// DefaultPort is the receivers' control port.
const DefaultPort = 2202

// Options holds the parsed flag values for one invocation.
type Options struct {
	Host    string
	Port    int
	Get     bool
	Set     bool
	Channel int
	Key     string
	Value   string
	Format  string
	JSON    bool // deprecated alias for --output-format=json
	List    bool
	Timeout time.Duration

	Interactive bool
	Discover    bool
}

// Run parses args and executes one invocation for the given family.
// It returns the process exit code: 0 on success, 1 on argument errors,
// unknown keys, invalid scopes, or transport failures.
func Run(ctx context.Context, f device.Family, args []string, stdout, stderr io.Writer) int {
	var opts Options

	fs := flag.NewFlagSet(f.String()+"ctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Host, "host", "", "Receiver hostname or IP")
	fs.IntVar(&opts.Port, "port", DefaultPort, "Control port")
	fs.BoolVar(&opts.Get, "get", false, "Query a value (all values without --key)")
	fs.BoolVar(&opts.Set, "set", false, "Write a value (requires --key and --value)")
	fs.IntVar(&opts.Channel, "channel", 0, "Channel index for channel-scoped keys")
	fs.StringVar(&opts.Key, "key", "", "Key name")
	fs.StringVar(&opts.Value, "value", "", "Value for --set")
	fs.StringVar(&opts.Format, "output-format", "text", "Output format: text, json, pretty, raw")
	fs.BoolVar(&opts.JSON, "json", false, "Deprecated: same as --output-format=json")
	fs.BoolVar(&opts.List, "list", false, "List the known keys and exit")
	fs.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Overall operation timeout")
	fs.BoolVar(&opts.Interactive, "interactive", false, "Start an interactive shell")
	fs.BoolVar(&opts.Discover, "discover", false, "Browse mDNS for receivers and exit")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	// An empty string is a legal value to write (clearing CHAN_NAME, for
	// example), so track whether --value was given at all.
	valueGiven := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "value" {
			valueGiven = true
		}
	})

	if opts.JSON {
		opts.Format = "json"
	}
	format, err := render.ParseFormat(opts.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	switch {
	case opts.List:
		listKeys(f, stdout)
		return 0

	case opts.Discover:
		return runDiscover(ctx, f, stdout, stderr, opts.Timeout)
	}

	if opts.Host == "" {
		fmt.Fprintln(stderr, "missing --host")
		return 1
	}

	c := client.New(f, opts.Host, opts.Port, client.DefaultConfig())

	if opts.Interactive {
		sh, err := newShell(f, c, stdout, stderr)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer sh.Close()
		return sh.Run(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	switch {
	case opts.Set:
		return runSet(ctx, f, c, opts, valueGiven, stderr)
	case opts.Get:
		return runGet(ctx, f, c, opts, format, stdout, stderr)
	default:
		fs.Usage()
		return 1
	}
}

func runGet(ctx context.Context, f device.Family, c *client.Client, opts Options,
	format render.Format, stdout, stderr io.Writer) int {

	// No key means a bulk snapshot of the device or of one channel.
	if opts.Key == "" {
		var (
			snap client.Snapshot
			err  error
		)
		if opts.Channel != 0 {
			if !f.ValidChannel(opts.Channel) {
				fmt.Fprintf(stderr, "channel %d out of range 1-%d\n", opts.Channel, f.Channels())
				return 1
			}
			snap, err = c.FetchChannel(ctx, opts.Channel)
		} else {
			snap, err = c.FetchAll(ctx)
		}
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		out, err := render.Snapshot(snap, format)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, out)
		return 0
	}

	addr, err := address(f, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	value, err := c.Get(ctx, addr)
	if errors.Is(err, client.ErrNoData) {
		// The device simply has nothing to report for this key.
		value = render.NoData
		if format != render.Text {
			value = ""
		}
	} else if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	out, err := render.Value(addr.Scope, addr.Key.Name, value, format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

func runSet(ctx context.Context, f device.Family, c *client.Client, opts Options,
	valueGiven bool, stderr io.Writer) int {

	if opts.Key == "" {
		fmt.Fprintln(stderr, "missing --key")
		return 1
	}
	if !valueGiven {
		fmt.Fprintln(stderr, "missing --value")
		return 1
	}

	addr, err := address(f, opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := c.Set(ctx, addr, opts.Value); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// address builds a validated address from the flag values. Channel 0 means
// device scope.
func address(f device.Family, opts Options) (device.Address, error) {
	scope := device.DeviceScope
	if opts.Channel != 0 {
		scope = device.ChannelScope(opts.Channel)
	}
	return device.NewAddress(f, scope, opts.Key)
}

// listKeys prints the key registry as a table.
func listKeys(f device.Family, stdout io.Writer) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSCOPE\tACCESS")
	for _, info := range device.Keys(f) {
		scope := "device"
		if info.Class == device.ChannelKey {
			scope = fmt.Sprintf("channel 1-%d", f.Channels())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, scope, info.Permission)
	}
	w.Flush()
}

func runDiscover(ctx context.Context, f device.Family, stdout, stderr io.Writer, timeout time.Duration) int {
	browser := discovery.NewBrowser(discovery.Config{BrowseTimeout: timeout})

	found, err := browser.FindAll(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	matched := 0
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tPORT")
	for _, rcv := range found {
		if rcv.Known && rcv.Family != f {
			continue
		}
		addr := rcv.Host
		if len(rcv.Addresses) > 0 {
			addr = rcv.Addresses[0]
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", rcv.InstanceName, addr, rcv.Port)
		matched++
	}
	w.Flush()

	if matched == 0 {
		fmt.Fprintln(stdout, "no receivers found")
	}
	return 0
}
