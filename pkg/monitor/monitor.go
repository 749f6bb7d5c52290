package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shuretools/shurelink/pkg/device"
)

// State is the connection lifecycle state of a monitor.
type State int

const (
	// StateDisconnected means no connection; the monitor is waiting to
	// retry.
	StateDisconnected State = iota

	// StateConnected means the socket is up but ingest has not started.
	StateConnected

	// StateIngesting means telemetry is flowing.
	StateIngesting

	// StateStopped is terminal; entered only on context cancellation.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateIngesting:
		return "INGESTING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// DialFunc dials the control port. Injectable for tests.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Config configures a monitor for one receiver.
type Config struct {
	// Host and Port locate the receiver's control socket.
	Host string
	Port int

	// Family selects the ingest mode: AD4D polls, P10T streams.
	Family device.Family

	// PollInterval is the pause between full passes of the poll list
	// (AD4D only).
	PollInterval time.Duration

	// RetryInterval is the wait between reconnection attempts.
	RetryInterval time.Duration

	// ConnectTimeout bounds the TCP connect.
	ConnectTimeout time.Duration

	// ReadTimeout is the per-read deadline inside the ingest loops. An
	// expired read is a poll deadline, not a failure.
	ReadTimeout time.Duration

	// PaceDelay spaces poll commands so the device is not overrun.
	PaceDelay time.Duration

	// MeterRate is the metering interval in milliseconds pushed to every
	// channel once per established connection.
	MeterRate int

	// Dialer overrides the network dialer. Nil means net.Dialer.
	Dialer DialFunc

	// Logger receives structured records. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		Port:           2202,
		PollInterval:   5 * time.Second,
		RetryInterval:  5 * time.Second,
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    2 * time.Second,
		PaceDelay:      50 * time.Millisecond,
		MeterRate:      1000,
	}
}

// Monitor owns the long-lived connection to one receiver and forwards
// every decoded metric to the sink. One monitor per receiver; monitors
// share nothing but the sink.
type Monitor struct {
	config   Config
	sink     MetricSink
	reporter StatusReporter
	logger   *slog.Logger

	state      atomic.Int32
	lastStatus string
}

// New creates a monitor. A nil sink or reporter degrades to the no-op
// implementation.
func New(config Config, sink MetricSink, reporter StatusReporter) *Monitor {
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 5 * time.Second
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 2 * time.Second
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 2 * time.Second
	}
	if config.MeterRate == 0 {
		config.MeterRate = 1000
	}
	if sink == nil {
		sink = NopSink{}
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		config:   config,
		sink:     sink,
		reporter: reporter,
		logger:   logger.With("host", config.Host, "device", config.Family.String()),
	}
	m.state.Store(int32(StateDisconnected))
	return m
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
}

// Run loops Disconnected → Connected → Ingesting → Disconnected until ctx
// is cancelled, then transitions to Stopped and returns nil. All runtime
// errors are recoverable; Run never returns a connection error.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.setState(StateStopped)

	for {
		if ctx.Err() != nil {
			return nil
		}

		conn, err := m.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Report the degraded status once per status change,
			// not once per attempt.
			if m.lastStatus != "waiting" {
				m.logger.Warn("receiver unreachable", "error", err)
				m.reporter.Status("waiting for device...")
				m.lastStatus = "waiting"
			}
			if sleepErr := sleep(ctx, m.config.RetryInterval); sleepErr != nil {
				return nil
			}
			continue
		}

		m.setState(StateConnected)
		session := uuid.NewString()[:8]
		logger := m.logger.With("session", session)
		logger.Info("connected", "target", conn.RemoteAddr().String())
		if m.lastStatus != "connected" {
			m.reporter.Status("connected")
			m.lastStatus = "connected"
		}

		m.setState(StateIngesting)
		switch m.config.Family {
		case device.P10T:
			err = m.streamLoop(ctx, conn, logger)
		default:
			err = m.pollLoop(ctx, conn, logger)
		}
		conn.Close()
		m.setState(StateDisconnected)

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warn("connection lost", "error", err)
		} else {
			logger.Info("connection closed by peer")
		}
		// The link is down; report it so a later redial registers as a
		// fresh connect.
		if m.lastStatus != "waiting" {
			m.reporter.Status("waiting for device...")
			m.lastStatus = "waiting"
		}
		if sleepErr := sleep(ctx, m.config.RetryInterval); sleepErr != nil {
			return nil
		}
	}
}

func (m *Monitor) dial(ctx context.Context) (net.Conn, error) {
	dial := m.config.Dialer
	if dial == nil {
		dial = (&net.Dialer{Timeout: m.config.ConnectTimeout}).DialContext
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()

	target := net.JoinHostPort(m.config.Host, fmt.Sprintf("%d", m.config.Port))
	return dial(dialCtx, "tcp", target)
}

// forward hands each metric to the sink. Sink failures are logged and
// swallowed; ingest keeps running.
func (m *Monitor) forward(ctx context.Context, logger *slog.Logger, metrics ...Metric) {
	for _, metric := range metrics {
		if err := m.sink.Record(ctx, metric); err != nil {
			logger.Warn("sink rejected metric",
				"key", metric.Key, "error", err)
		}
	}
}

// sleep waits for d or until ctx is done.
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
