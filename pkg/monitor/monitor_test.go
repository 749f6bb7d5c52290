package monitor

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuretools/shurelink/pkg/device"
)

// recordingSink collects metrics; safe for concurrent use.
type recordingSink struct {
	mu      sync.Mutex
	metrics []Metric
}

func (s *recordingSink) Record(_ context.Context, m Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
	return nil
}

func (s *recordingSink) snapshot() []Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Metric, len(s.metrics))
	copy(out, s.metrics)
	return out
}

func (s *recordingSink) find(key string) (Metric, bool) {
	for _, m := range s.snapshot() {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// recordingReporter collects status strings; safe for concurrent use.
type recordingReporter struct {
	mu       sync.Mutex
	statuses []string
}

func (r *recordingReporter) Ready()  {}
func (r *recordingReporter) Stopping() {}
func (r *recordingReporter) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, msg)
}

func (r *recordingReporter) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.statuses))
	copy(out, r.statuses)
	return out
}

func testMonitorConfig(host string, port int, f device.Family) Config {
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Family = f
	cfg.PollInterval = 50 * time.Millisecond
	cfg.RetryInterval = 30 * time.Millisecond
	cfg.ConnectTimeout = time.Second
	cfg.ReadTimeout = 100 * time.Millisecond
	cfg.PaceDelay = time.Millisecond
	return cfg
}

func TestMetricStoreKey(t *testing.T) {
	m := Metric{Host: "rack-1", Scope: device.ChannelScope(2), Key: "RSSI", Value: "80"}
	assert.Equal(t, "rack-1:channel:2", m.StoreKey())

	m = Metric{Host: "rack-1", Scope: device.DeviceScope, Key: "MODEL", Value: "AD4D"}
	assert.Equal(t, "rack-1:device", m.StoreKey())
}

func TestMetricNormalization(t *testing.T) {
	tests := []struct {
		key      string
		wantName string
		wantSide string
	}{
		{"AUDIO_LEVEL_PEAK", "AUDIO_LEVEL_PEAK", ""},
		{"AUDIO_LEVEL_L", "AUDIO_LEVEL", "L"},
		{"AUDIO_IN_LVL_R", "AUDIO_LEVEL", "R"},
		{"FREQUENCY", "FREQUENCY", ""},
		{"RSSI_A", "RSSI_A", ""},
	}
	for _, tt := range tests {
		m := Metric{Key: tt.key}
		assert.Equal(t, tt.wantName, m.NormalizedName(), tt.key)
		assert.Equal(t, tt.wantSide, m.Side(), tt.key)
	}
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := MultiSink{a, b}

	require.NoError(t, sink.Record(context.Background(), Metric{Key: "RSSI"}))
	assert.Len(t, a.snapshot(), 1)
	assert.Len(t, b.snapshot(), 1)
}

func TestPollAddresses(t *testing.T) {
	list := pollAddresses(device.AD4D)

	deviceKeys := 0
	for _, info := range device.Keys(device.AD4D) {
		if info.Class == device.DeviceKey {
			deviceKeys++
		}
	}
	assert.Len(t, list, deviceKeys+4*len(pollChannelKeys))

	// Device keys first, then channels in order.
	assert.False(t, list[0].Scope.IsChannel())
	last := list[len(list)-1]
	assert.Equal(t, 4, last.Scope.Channel())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "DISCONNECTED", StateDisconnected.String())
	assert.Equal(t, "INGESTING", StateIngesting.String())
	assert.Equal(t, "STOPPED", StateStopped.String())
}

// streamServer accepts connections and feeds each one the given script,
// closing after the first connection's script to force a reconnect.
func streamServer(t *testing.T, scripts ...string) (host string, port int, accepted *int32Counter) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	accepted = &int32Counter{}
	go func() {
		for i := 0; ; i++ {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.inc()

			script := scripts[len(scripts)-1]
			if i < len(scripts) {
				script = scripts[i]
			}
			last := i >= len(scripts)-1

			go func(conn net.Conn, script string, keepOpen bool) {
				conn.Write([]byte(script))
				if !keepOpen {
					conn.Close()
					return
				}
				// Hold the connection open; discard any input.
				buf := make([]byte, 256)
				for {
					if _, err := conn.Read(buf); err != nil {
						conn.Close()
						return
					}
				}
			}(conn, script, last)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, accepted
}

type int32Counter struct {
	mu sync.Mutex
	n  int
}

func (c *int32Counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *int32Counter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStreamingMonitorIngestsAndReconnects(t *testing.T) {
	first := "< REPORT DEVICE_NAME {Stage Left} >\r\n" +
		"< SAMPLE 1 ALL 5 3 -12 -20 AB 7 80 6 78 >\r\n" +
		"partial-tail-without-newline"
	second := "< REPORT 2 RF_MUTE OFF >\r\n"

	host, port, accepted := streamServer(t, first, second)

	sink := &recordingSink{}
	reporter := &recordingReporter{}
	mon := New(testMonitorConfig(host, port, device.P10T), sink, reporter)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	// First connection: report and sample decoded, partial tail ignored.
	waitFor(t, 5*time.Second, func() bool {
		_, ok := sink.find("DEVICE_NAME")
		return ok
	})
	m, _ := sink.find("DEVICE_NAME")
	assert.Equal(t, "Stage Left", m.Value)
	assert.Equal(t, host+":device", m.StoreKey())

	waitFor(t, 5*time.Second, func() bool {
		_, ok := sink.find("RSSI_B")
		return ok
	})
	m, _ = sink.find("CHANNEL_QUALITY")
	assert.Equal(t, 1, m.Scope.Channel())

	// The server closed the first connection mid-stream: the monitor
	// must reconnect on its own and keep ingesting.
	waitFor(t, 5*time.Second, func() bool {
		_, ok := sink.find("RF_MUTE")
		return ok
	})
	assert.GreaterOrEqual(t, accepted.value(), 2)

	// One status per transition: the dropped connection is reported, and
	// the successful redial registers as a fresh connect.
	assert.Equal(t,
		[]string{"connected", "waiting for device...", "connected"},
		reporter.snapshot())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	assert.Equal(t, StateStopped, mon.State())
}

func TestMonitorDegradedStatusOncePerChange(t *testing.T) {
	// Nothing listening: the monitor must keep retrying and report the
	// degraded status exactly once.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	reporter := &recordingReporter{}
	cfg := testMonitorConfig("127.0.0.1", port, device.P10T)
	cfg.RetryInterval = 10 * time.Millisecond
	mon := New(cfg, nil, reporter)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	waitFor(t, 5*time.Second, func() bool {
		return len(reporter.snapshot()) >= 1
	})
	// Give it a few more retry cycles, then confirm no repeats.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"waiting for device..."}, reporter.snapshot())

	cancel()
	require.NoError(t, <-done)
}

// pollServer emulates an AD4D: answers GETs, stays silent on SETs, and
// interleaves a SAMPLE frame with one reply.
func pollServer(t *testing.T) (host string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				buf := make([]byte, 1024)
				for {
					n, err := conn.Read(buf)
					if err != nil {
						return
					}
					for _, cmd := range strings.Split(string(buf[:n]), "\r\n") {
						cmd = strings.TrimSpace(cmd)
						switch cmd {
						case "< GET MODEL >":
							conn.Write([]byte("< REP MODEL AD4D >\r\n"))
						case "< GET 1 FREQUENCY >":
							conn.Write([]byte(
								"< REP 1 FREQUENCY 500.000 >" +
									"< SAMPLE 1 ALL 5 3 -12 -20 AB 7 80 6 78 >\r\n"))
						}
					}
				}
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestPollingMonitorIngests(t *testing.T) {
	host, port := pollServer(t)

	sink := &recordingSink{}
	mon := New(testMonitorConfig(host, port, device.AD4D), sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	waitFor(t, 10*time.Second, func() bool {
		_, okModel := sink.find("MODEL")
		_, okFreq := sink.find("FREQUENCY")
		_, okSample := sink.find("RSSI_A")
		return okModel && okFreq && okSample
	})

	m, _ := sink.find("MODEL")
	assert.Equal(t, "AD4D", m.Value)
	assert.False(t, m.Scope.IsChannel())

	m, _ = sink.find("FREQUENCY")
	assert.Equal(t, "500.000", m.Value)
	assert.Equal(t, 1, m.Scope.Channel())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
