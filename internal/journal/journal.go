// Package journal keeps a local record of print-job outcomes.
//
// The journal is an operator aid, not a retry queue: entries are written
// after dispatch completes and are never replayed. Restarting the process
// does not reprint anything.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mattjoyce/paperjet/internal/storage"
)

type Status string

const (
	StatusPrinted Status = "printed"
	StatusFailed  Status = "failed"
)

// timeFormat is fixed-width so stored timestamps sort correctly as text.
// RFC3339Nano would trim trailing fractional zeros and break ORDER BY.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded dispatch outcome.
type Entry struct {
	ID          string
	Provider    string
	TicketID    string
	Status      Status
	Device      string
	LastError   *string
	QueuedAt    time.Time
	CompletedAt time.Time
}

// Journal persists entries in SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens the journal database at path, creating the schema if missing.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := storage.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS print_log (
  id           TEXT PRIMARY KEY,
  provider     TEXT NOT NULL,
  ticket_id    TEXT NOT NULL,
  status       TEXT NOT NULL,
  device       TEXT NOT NULL,
  last_error   TEXT,
  queued_at    TEXT NOT NULL,
  completed_at TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create print_log: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Record appends one outcome.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is empty")
	}
	if e.Status != StatusPrinted && e.Status != StatusFailed {
		return fmt.Errorf("invalid status: %q", e.Status)
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO print_log(id, provider, ticket_id, status, device, last_error, queued_at, completed_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, e.ID, e.Provider, e.TicketID, e.Status, e.Device, e.LastError,
		e.QueuedAt.UTC().Format(timeFormat),
		e.CompletedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("record print outcome: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
SELECT id, provider, ticket_id, status, device, last_error, queued_at, completed_at
FROM print_log
ORDER BY completed_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query print_log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			statusS    string
			lastError  sql.NullString
			queuedS    string
			completedS string
		)
		if err := rows.Scan(&e.ID, &e.Provider, &e.TicketID, &statusS, &e.Device, &lastError, &queuedS, &completedS); err != nil {
			return nil, fmt.Errorf("scan print_log row: %w", err)
		}
		e.Status = Status(statusS)
		if lastError.Valid {
			e.LastError = &lastError.String
		}
		if t, err := time.Parse(timeFormat, queuedS); err == nil {
			e.QueuedAt = t
		}
		if t, err := time.Parse(timeFormat, completedS); err == nil {
			e.CompletedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
