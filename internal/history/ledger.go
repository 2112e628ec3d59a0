// Package history records the outcome of jobs in a SQLite database; the
// service writes one row for each terminal job the registry sweeps away. It is an append-only, write-mostly
// audit trail: the registry's admission map is the only source of truth for
// in-flight and recently-terminal jobs, and nothing ever reads this ledger
// back into a Job or a Registry. It exists purely so an operator can answer
// "what ran, and how did it end" after the registry has swept a job away.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quietcut/quietcut/internal/jobs"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	job_id       TEXT PRIMARY KEY,
	input_path   TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	recorded_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_recorded_at ON outcomes(recorded_at);
`

// Ledger is a handle to the outcome database. The zero value is not usable;
// construct one with Open.
type Ledger struct {
	db *sql.DB
}

// Open creates the ledger database (and its parent directory) if it does
// not already exist, and returns a handle to it.
func Open(dbPath string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("history: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends one outcome row for a job that has just reached a terminal
// status. It is meant to be wired as a Registry's OnSwept callback, so the
// record is written exactly once per job, right before its output file is
// deleted.
func (l *Ledger) Record(j *jobs.Job) error {
	status := j.LastStatus()
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO outcomes (job_id, input_path, output_path, outcome, message, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID.String(), j.InputPath, j.OutputPath, string(status.Kind), status.Message, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("history: record outcome for job %s: %w", j.ID.String(), err)
	}
	return nil
}

// Outcome is one row read back from the ledger.
type Outcome struct {
	JobID      string
	InputPath  string
	OutputPath string
	Kind       string
	Message    string
	RecordedAt time.Time
}

// Recent returns the most recently recorded outcomes, newest first, capped
// at limit rows.
func (l *Ledger) Recent(limit int) ([]Outcome, error) {
	rows, err := l.db.Query(
		`SELECT job_id, input_path, output_path, outcome, message, recorded_at FROM outcomes ORDER BY recorded_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query recent outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var recordedAt string
		if err := rows.Scan(&o.JobID, &o.InputPath, &o.OutputPath, &o.Kind, &o.Message, &recordedAt); err != nil {
			return nil, fmt.Errorf("history: scan outcome row: %w", err)
		}
		o.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse recorded_at: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
