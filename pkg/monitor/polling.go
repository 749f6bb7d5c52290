package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/wire"
)

// pollChannelKeys is the per-channel subset polled each cycle. Slow-moving
// configuration keys and the transmitter health keys; the fast metering
// values arrive as interleaved SAMPLE frames once METER_RATE is set.
var pollChannelKeys = []string{
	"CHAN_NAME",
	"FREQUENCY",
	"AUDIO_GAIN",
	"AUDIO_MUTE",
	"ANTENNA_STATUS",
	"AUDIO_LEVEL_RMS",
	"AUDIO_LEVEL_PEAK",
	"TX_DEVICE_ID",
	"TX_BATT_MINS",
	"TX_BATT_CHARGE_PERCENT",
	"TX_MODEL",
	"TX_LOCK",
	"TX_TALK_SWITCH",
}

// pollAddresses builds the fixed, repeating poll list for a family: every
// device key once, then the channel subset for each valid channel.
func pollAddresses(f device.Family) []device.Address {
	var out []device.Address
	for _, info := range device.Keys(f) {
		if info.Class != device.DeviceKey {
			continue
		}
		if addr, err := device.NewAddress(f, device.DeviceScope, info.Name); err == nil {
			out = append(out, addr)
		}
	}
	for ch := 1; ch <= f.Channels(); ch++ {
		for _, name := range pollChannelKeys {
			if addr, err := device.NewAddress(f, device.ChannelScope(ch), name); err == nil {
				out = append(out, addr)
			}
		}
	}
	return out
}

// pollLoop drives the active-polling ingest mode: enable metering, then
// walk the poll list forever, reading whatever the device has after each
// command. Returns nil only when ctx is cancelled.
func (m *Monitor) pollLoop(ctx context.Context, conn net.Conn, logger *slog.Logger) error {
	if err := m.initMetering(ctx, conn); err != nil {
		return err
	}

	list := pollAddresses(m.config.Family)
	chunk := make([]byte, 4096)

	for {
		for _, addr := range list {
			if ctx.Err() != nil {
				return nil
			}
			if err := m.pollOne(ctx, conn, addr, chunk, logger); err != nil {
				return err
			}
		}
		if err := sleep(ctx, m.config.PollInterval); err != nil {
			return nil
		}
	}
}

// initMetering pushes the metering-rate configuration once per established
// connection so SAMPLE frames start flowing between polls.
func (m *Monitor) initMetering(ctx context.Context, conn net.Conn) error {
	rate := strconv.Itoa(m.config.MeterRate)
	for ch := 1; ch <= m.config.Family.Channels(); ch++ {
		addr, err := device.NewAddress(m.config.Family, device.ChannelScope(ch), "METER_RATE")
		if err != nil {
			continue
		}
		if err := m.write(conn, wire.EncodeCommand(wire.Set, addr, rate)); err != nil {
			return err
		}
	}
	return sleep(ctx, 200*time.Millisecond)
}

// pollOne sends one GET, paces, and decodes whatever arrived: the reply
// to this command plus any interleaved SAMPLE frames.
func (m *Monitor) pollOne(ctx context.Context, conn net.Conn, addr device.Address, chunk []byte, logger *slog.Logger) error {
	if err := m.write(conn, wire.EncodeCommand(wire.Get, addr, "")); err != nil {
		return err
	}
	if err := sleep(ctx, m.config.PaceDelay); err != nil {
		return nil
	}

	conn.SetReadDeadline(time.Now().Add(m.config.ReadTimeout))
	n, err := conn.Read(chunk)
	if n > 0 {
		m.ingestRaw(ctx, string(chunk[:n]), logger)
	}
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil // nothing to read this round
		}
		return err
	}
	return nil
}

func (m *Monitor) write(conn net.Conn, cmd string) error {
	conn.SetWriteDeadline(time.Now().Add(m.config.ConnectTimeout))
	_, err := io.WriteString(conn, cmd)
	return err
}

// ingestRaw re-splits a read burst on frame starts and decodes each part.
// Unparsable parts are logged and dropped; a malformed frame never tears
// the connection down.
func (m *Monitor) ingestRaw(ctx context.Context, raw string, logger *slog.Logger) {
	for _, part := range strings.Split(raw, "<") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m.ingestLine(ctx, "< "+part, logger)
	}
}

// ingestLine classifies and decodes one frame, forwarding its metrics.
func (m *Monitor) ingestLine(ctx context.Context, line string, logger *slog.Logger) {
	switch wire.Classify(m.config.Family, line) {
	case wire.KindSample:
		if s, ok := wire.ParseSample(line); ok {
			m.forward(ctx, logger, m.fromSample(s)...)
			return
		}
	case wire.KindReply:
		if rep, ok := wire.ParseReply(m.config.Family, line); ok {
			m.forward(ctx, logger, m.fromReply(rep))
			return
		}
	}
	logger.Debug("unparsed line", "line", line)
}
