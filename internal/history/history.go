// Package history keeps a local SQLite ledger of every command tt executed:
// when, under which session, with what exit code, and whether the danger
// gate fired. The ledger is auditing support only; failures to record never
// fail the command that was run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one executed command.
type Entry struct {
	ID        int64
	At        time.Time
	Session   string
	Command   string
	ExitCode  int
	Dangerous bool
}

// Ledger is the SQLite-backed execution record.
type Ledger struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	at        TEXT    NOT NULL,
	session   TEXT    NOT NULL DEFAULT '',
	command   TEXT    NOT NULL,
	exit_code INTEGER NOT NULL,
	dangerous INTEGER NOT NULL DEFAULT 0
);
`

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record appends one execution to the ledger.
func (l *Ledger) Record(e Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := l.db.Exec(
		`INSERT INTO executions (at, session, command, exit_code, dangerous) VALUES (?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339), e.Session, e.Command, e.ExitCode, boolToInt(e.Dangerous),
	)
	if err != nil {
		return fmt.Errorf("recording execution: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(limit int) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, at, session, command, exit_code, dangerous
		 FROM executions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		var dangerous int
		if err := rows.Scan(&e.ID, &at, &e.Session, &e.Command, &e.ExitCode, &dangerous); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		e.Dangerous = dangerous != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
