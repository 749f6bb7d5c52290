package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/wire"
)

// ErrNoData means the query was well-formed and the transport worked, but
// no matching reply arrived within the read window. This is a valid steady
// state (for example no transmitter paired on the channel), distinct from
// a transport failure.
var ErrNoData = errors.New("no data returned")

// DialFunc dials the control port. Injectable for tests.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config holds the timing parameters of the drain-and-match round trip.
// The defaults are empirical values tuned against real hardware; firmware
// revisions vary in turnaround latency, so all of them are tunable.
type Config struct {
	// ConnectTimeout bounds the TCP connect.
	ConnectTimeout time.Duration

	// SettleDelay is the pause between sending a single command and the
	// first read. The device gives no turnaround guarantee.
	SettleDelay time.Duration

	// BulkSettleDelay is the settle pause after a pipelined bulk send,
	// sized for the larger reply volume.
	BulkSettleDelay time.Duration

	// ReadWindow is the absolute drain deadline for a single-key query.
	ReadWindow time.Duration

	// BulkReadWindow is the drain deadline for a bulk query.
	BulkReadWindow time.Duration

	// PaceDelay spaces pipelined sends so the device receive buffer is
	// not overrun.
	PaceDelay time.Duration

	// Dialer overrides the network dialer. Nil means net.Dialer.
	Dialer DialFunc
}

// DefaultConfig returns the timing defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  2 * time.Second,
		SettleDelay:     100 * time.Millisecond,
		BulkSettleDelay: 400 * time.Millisecond,
		ReadWindow:      500 * time.Millisecond,
		BulkReadWindow:  500 * time.Millisecond,
		PaceDelay:       10 * time.Millisecond,
	}
}

// Client issues one-shot commands to a single receiver.
type Client struct {
	family device.Family
	target string
	config Config
}

// New creates a client for the receiver at host:port.
func New(family device.Family, host string, port int, config Config) *Client {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 2 * time.Second
	}
	return &Client{
		family: family,
		target: net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		config: config,
	}
}

// Family returns the device family the client speaks.
func (c *Client) Family() device.Family {
	return c.family
}

// Get reads one key. It returns ErrNoData if the window elapses without a
// frame matching the address; transport failures come back as wrapped
// connect/read errors.
func (c *Client) Get(ctx context.Context, addr device.Address) (string, error) {
	raw, err := c.exchange(ctx, []string{wire.EncodeCommand(wire.Get, addr, "")},
		c.config.SettleDelay, c.config.ReadWindow)
	if err != nil {
		return "", err
	}

	for _, frame := range wire.SplitReplies(c.family, raw) {
		rep, ok := wire.ParseReply(c.family, frame)
		if !ok {
			continue
		}
		if rep.Scope == addr.Scope && rep.Key == addr.Key.Name {
			return rep.Value, nil
		}
	}
	return "", ErrNoData
}

// Set writes one key. The device does not reliably echo sets, so success
// is the absence of a validation or transport error; no reply is awaited.
func (c *Client) Set(ctx context.Context, addr device.Address, value string) error {
	if err := addr.CheckWritable(); err != nil {
		return err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return c.write(conn, wire.EncodeCommand(wire.Set, addr, value))
}

// exchange opens a connection, writes every command with pacing, settles,
// and drains the socket until the window deadline.
func (c *Client) exchange(ctx context.Context, cmds []string, settle, window time.Duration) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := c.write(conn, cmd); err != nil {
			return "", err
		}
		if i < len(cmds)-1 {
			if err := sleep(ctx, c.config.PaceDelay); err != nil {
				return "", err
			}
		}
	}

	if err := sleep(ctx, settle); err != nil {
		return "", err
	}

	return drain(conn, time.Now().Add(window))
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dial := c.config.Dialer
	if dial == nil {
		dial = (&net.Dialer{Timeout: c.config.ConnectTimeout}).DialContext
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, err := dial(dialCtx, "tcp", c.target)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.target, err)
	}
	return conn, nil
}

func (c *Client) write(conn net.Conn, cmd string) error {
	conn.SetWriteDeadline(time.Now().Add(c.config.ConnectTimeout))
	if _, err := io.WriteString(conn, cmd); err != nil {
		return fmt.Errorf("write %s: %w", c.target, err)
	}
	return nil
}

// drain accumulates everything the device sends until the absolute
// deadline passes or the peer closes. A read deadline expiring is the
// normal end of the window, not a failure.
func drain(conn net.Conn, deadline time.Time) (string, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)

	for {
		if !time.Now().Before(deadline) {
			break
		}
		conn.SetReadDeadline(deadline)

		n, err := conn.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				break // window elapsed
			}
			if errors.Is(err, io.EOF) {
				break // peer closed
			}
			if buf.Len() == 0 {
				return "", fmt.Errorf("read: %w", err)
			}
			break
		}
	}

	return buf.String(), nil
}

// sleep waits for d or until the context is cancelled, whichever comes
// first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
