package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// JournalHandler is a slog.Handler that writes records to the systemd
// journal. Attribute keys become journal fields, uppercased with dots and
// dashes folded to underscores.
type JournalHandler struct {
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewJournalHandler returns a handler emitting records at or above level.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{level: level}
}

// Enabled implements slog.Handler.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *JournalHandler) Handle(_ context.Context, rec slog.Record) error {
	vars := make(map[string]string, rec.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		vars[fieldName(h.group, attr.Key)] = attr.Value.String()
	}
	rec.Attrs(func(attr slog.Attr) bool {
		vars[fieldName(h.group, attr.Key)] = attr.Value.String()
		return true
	})
	return journal.Send(rec.Message, priority(rec.Level), vars)
}

// WithAttrs implements slog.Handler.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "_" + name
	} else {
		clone.group = name
	}
	return &clone
}

func priority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// fieldName converts an attr key into a journal field name. Journal fields
// must be uppercase ASCII and must not start with an underscore.
func fieldName(group, key string) string {
	if group != "" {
		key = group + "_" + key
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name == "" {
		name = fmt.Sprintf("FIELD_%d", len(key))
	}
	return name
}
