// Package notify reports service state to the systemd service manager via
// the sd_notify socket. Outside systemd the calls fall back to the logger,
// so the monitor behaves the same on a developer machine.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Reporter sends readiness and status updates. It implements the
// StatusReporter interface consumed by the monitor.
type Reporter struct {
	logger *slog.Logger
}

// New returns a reporter. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger}
}

// Ready signals that startup is complete.
func (r *Reporter) Ready() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		r.logger.Warn("sd_notify failed", "error", err)
	}
	if !sent {
		r.logger.Info("service ready")
	}
}

// Status publishes a one-line status string.
func (r *Reporter) Status(msg string) {
	sent, err := daemon.SdNotify(false, fmt.Sprintf("STATUS=%s", msg))
	if err != nil {
		r.logger.Warn("sd_notify failed", "error", err)
	}
	if !sent {
		r.logger.Info("status", "message", msg)
	}
}

// Stopping signals that shutdown has begun.
func (r *Reporter) Stopping() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		r.logger.Warn("sd_notify failed", "error", err)
	}
	if !sent {
		r.logger.Info("service stopping")
	}
}
