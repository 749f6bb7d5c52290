package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/shuretools/shurelink/pkg/client"
	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/render"
)

// shell is the interactive command loop behind --interactive.
type shell struct {
	family device.Family
	client *client.Client
	rl     *readline.Instance
	stderr io.Writer
}

func newShell(f device.Family, c *client.Client, stdout, stderr io.Writer) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          f.String() + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &shell{family: f, client: c, rl: rl, stderr: stderr}, nil
}

func (s *shell) Close() {
	s.rl.Close()
}

// Run reads commands until quit, EOF, or ctx cancellation. It always
// returns 0; per-command failures are printed, not fatal.
func (s *shell) Run(ctx context.Context) int {
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return 0
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return 0
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "get", "g":
			s.cmdGet(ctx, args)

		case "set", "s":
			s.cmdSet(ctx, args)

		case "list", "l":
			listKeys(s.family, s.rl.Stdout())

		case "watch", "w":
			s.cmdWatch(ctx, args)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return 0

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Commands:
  get [channel] <key>         - Query one value (channel first for channel keys)
  get all                     - Query everything the device will answer
  set [channel] <key> <value> - Write one value
  watch [channel] <key>       - Poll a key once a second until Enter
  list                        - Show the known keys
  help                        - Show this help
  quit                        - Exit`)
}

// parseTarget splits an optional leading channel index off the argument
// list, returning the scope and remaining args.
func (s *shell) parseTarget(args []string) (device.Scope, []string) {
	if len(args) >= 2 {
		if ch, err := strconv.Atoi(args[0]); err == nil {
			return device.ChannelScope(ch), args[1:]
		}
	}
	return device.DeviceScope, args
}

func (s *shell) cmdGet(ctx context.Context, args []string) {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		snap, err := s.client.FetchAll(ctx)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
			return
		}
		out, _ := render.Snapshot(snap, render.Text)
		fmt.Fprintln(s.rl.Stdout(), out)
		return
	}

	scope, rest := s.parseTarget(args)
	if len(rest) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: get [channel] <key>")
		return
	}

	addr, err := device.NewAddress(s.family, scope, rest[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}

	value, err := s.client.Get(ctx, addr)
	switch {
	case errors.Is(err, client.ErrNoData):
		fmt.Fprintln(s.rl.Stdout(), render.NoData)
	case err != nil:
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	default:
		fmt.Fprintln(s.rl.Stdout(), value)
	}
}

func (s *shell) cmdSet(ctx context.Context, args []string) {
	scope, rest := s.parseTarget(args)
	if len(rest) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: set [channel] <key> <value>")
		return
	}

	addr, err := device.NewAddress(s.family, scope, rest[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}

	value := strings.Join(rest[1:], " ")
	if err := s.client.Set(ctx, addr, value); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

// cmdWatch polls one key until the user presses Enter.
func (s *shell) cmdWatch(ctx context.Context, args []string) {
	scope, rest := s.parseTarget(args)
	if len(rest) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch [channel] <key>")
		return
	}

	addr, err := device.NewAddress(s.family, scope, rest[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}

	fmt.Fprintln(s.rl.Stdout(), "Watching, press Enter to stop")

	stop := make(chan struct{})
	go func() {
		defer close(stop)
		_, _ = s.rl.Readline()
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			value, err := s.client.Get(ctx, addr)
			switch {
			case errors.Is(err, client.ErrNoData):
				fmt.Fprintf(s.rl.Stdout(), "%s: %s\n", addr, render.NoData)
			case err != nil:
				fmt.Fprintf(s.rl.Stdout(), "%s: error: %v\n", addr, err)
			default:
				fmt.Fprintf(s.rl.Stdout(), "%s: %s\n", addr, value)
			}
		}
	}
}
