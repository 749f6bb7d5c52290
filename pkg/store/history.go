package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shuretools/shurelink/pkg/monitor"
)

// History appends every observation to a SQLite table so telemetry can be
// inspected after the fact. The Redis sink only keeps the latest value;
// this keeps the timeline. Use ":memory:" for tests.
type History struct {
	db *sql.DB
}

// NewHistory opens (and if needed creates) the history database at path.
func NewHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure history db: %w", err)
	}

	h := &History{db: db}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return h, nil
}

func (h *History) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS telemetry (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		host        TEXT NOT NULL,
		family      TEXT NOT NULL,
		channel     INTEGER,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		observed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_telemetry_host_key ON telemetry(host, key);
	CREATE INDEX IF NOT EXISTS idx_telemetry_observed_at ON telemetry(observed_at);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Record implements monitor.MetricSink.
func (h *History) Record(ctx context.Context, m monitor.Metric) error {
	var channel any
	if m.Scope.IsChannel() {
		channel = m.Scope.Channel()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO telemetry (host, family, channel, key, value, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Host, m.Family.String(), channel, m.Key, m.Value, time.Now().UTC())
	return err
}

// Prune deletes observations older than the cutoff and returns how many
// rows went away.
func (h *History) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := h.db.ExecContext(ctx,
		`DELETE FROM telemetry WHERE observed_at < ?`,
		time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
