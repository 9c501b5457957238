// Package persistence stores comparison runs in SQLite.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/apery/internal/catalog"
)

// ErrNotFound is returned when a run or meta key does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sqlx.DB
}

// Run summarises one catalog evaluation.
type Run struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StartedAt time.Time `db:"-" json:"started_at"`
	Started   int64     `db:"started_at" json:"-"`
	Digits    int       `db:"digits" json:"digits"`
	Entries   int       `db:"entries" json:"entries"`
	Failed    int       `db:"failed" json:"failed"`
	Source    string    `db:"source" json:"source"`
}

// OutcomeRow is one stored entry outcome. Numbers are decimal text at the
// run's full precision; empty strings mean "not applicable".
type OutcomeRow struct {
	RunID         uuid.UUID `db:"run_id" json:"-"`
	Position      int       `db:"position" json:"-"`
	Name          string    `db:"name" json:"name"`
	Formula       string    `db:"formula" json:"formula"`
	Predicted     string    `db:"predicted" json:"predicted,omitempty"`
	Reference     string    `db:"reference" json:"reference,omitempty"`
	RelativeError string    `db:"relative_error" json:"relative_error,omitempty"`
	Within        bool      `db:"within" json:"within"`
	Verdict       string    `db:"verdict" json:"verdict,omitempty"`
	Error         string    `db:"error" json:"error,omitempty"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		digits INTEGER NOT NULL,
		entries INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		source TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outcomes (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		formula TEXT NOT NULL,
		predicted TEXT NOT NULL,
		reference TEXT NOT NULL,
		relative_error TEXT NOT NULL,
		within INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		error TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores the outcomes of one evaluation at the given digit count
// and returns the new run.
func (db *DB) SaveRun(digits int, source string, outcomes []catalog.Outcome) (Run, error) {
	run := Run{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
		Digits:    digits,
		Entries:   len(outcomes),
		Source:    source,
	}
	run.Started = run.StartedAt.UnixMilli()
	for _, o := range outcomes {
		if o.Err != nil {
			run.Failed++
		}
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO runs (id, started_at, digits, entries, failed, source)
		VALUES (:id, :started_at, :digits, :entries, :failed, :source)`, run)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO outcomes
		(run_id, position, name, formula, predicted, reference, relative_error, within, verdict, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()

	for i, o := range outcomes {
		row := toRow(run.ID, i, digits, o)
		_, err := stmt.Exec(
			row.RunID, row.Position, row.Name, row.Formula,
			row.Predicted, row.Reference, row.RelativeError,
			row.Within, row.Verdict, row.Error,
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert outcome %s: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	slog.Info("run saved", "id", run.ID, "entries", run.Entries, "failed", run.Failed)
	return run, nil
}

func toRow(id uuid.UUID, pos, digits int, o catalog.Outcome) OutcomeRow {
	row := OutcomeRow{
		RunID:     id,
		Position:  pos,
		Name:      o.Entry.Name,
		Formula:   o.Entry.Formula.String(),
		Reference: o.Entry.Reference,
	}
	if o.Err != nil {
		row.Error = o.Err.Error()
		return row
	}
	row.Predicted = o.Value.Text('g', digits)
	if o.Result != nil {
		row.RelativeError = o.Result.RelativeError.Text('g', digits)
		row.Within = o.Result.WithinThreshold
		row.Verdict = string(o.Result.Verdict)
	}
	return row
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT id, started_at, digits, entries, failed, source
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	for i := range runs {
		runs[i].StartedAt = time.UnixMilli(runs[i].Started).UTC()
	}
	return runs, nil
}

// GetRun returns one run by id.
func (db *DB) GetRun(id uuid.UUID) (Run, error) {
	var run Run
	err := db.conn.Get(&run,
		"SELECT id, started_at, digits, entries, failed, source FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("select run: %w", err)
	}
	run.StartedAt = time.UnixMilli(run.Started).UTC()
	return run, nil
}

// RunOutcomes returns the stored outcomes of a run in catalog order.
func (db *DB) RunOutcomes(id uuid.UUID) ([]OutcomeRow, error) {
	if _, err := db.GetRun(id); err != nil {
		return nil, err
	}
	var rows []OutcomeRow
	err := db.conn.Select(&rows,
		`SELECT run_id, position, name, formula, predicted, reference,
		        relative_error, within, verdict, error
		 FROM outcomes WHERE run_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("select outcomes: %w", err)
	}
	return rows, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, ErrNotFound)
	}
	return value, err
}
