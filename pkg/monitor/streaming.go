package monitor

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/shuretools/shurelink/pkg/wire"
)

// streamLoop drives the passive ingest mode: block on reads, reassemble
// complete newline-terminated frames from a grow buffer, and decode each
// one. The partial trailing line stays buffered across reads. Returns nil
// on ctx cancellation, io.EOF-wrapped or transport errors otherwise.
func (m *Monitor) streamLoop(ctx context.Context, conn net.Conn, logger *slog.Logger) error {
	var buf []byte
	chunk := make([]byte, 4096)

	for {
		if ctx.Err() != nil {
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(m.config.ReadTimeout))
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)

			var lines []string
			lines, buf = wire.SplitLines(buf)
			for _, line := range lines {
				m.ingestLine(ctx, line, logger)
			}
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue // idle link; poll the shutdown flag again
			}
			return err
		}
	}
}
