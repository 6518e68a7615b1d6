// Package history records every CLI, watch, and serve compile attempt
// to a small database/sql-backed table, following the spirit of the
// teacher's migration tracker without the rest of the ORM.
package history

import (
	"database/sql"
	"fmt"
	"time"

	// sqlite3 is the default driver.
	_ "github.com/mattn/go-sqlite3"
	// pgx/v5/stdlib registers the "pgx" driver for history.driver: postgres.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Run is one recorded compile attempt.
type Run struct {
	ID         int64
	Timestamp  time.Time
	InputPath  string
	Success    bool
	ErrorCount int
	FirstError string
}

// Store persists Runs to a sqlite3 or postgres database.
type Store struct {
	db       *sql.DB
	postgres bool
}

// Open connects to the given driver ("sqlite3" or "postgres") and dsn,
// creating the runs table if it doesn't already exist. "postgres" maps
// to the pgx/v5/stdlib driver name "pgx".
func Open(driver, dsn string) (*Store, error) {
	driverName := driver
	if driver == "postgres" {
		driverName = "pgx"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", driver, err)
	}

	s := &Store{db: db, postgres: driver == "postgres"}
	if err := s.initialize(driver); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already-open *sql.DB, used by tests against
// sqlmock.
func NewWithDB(db *sql.DB, driver string) (*Store, error) {
	s := &Store{db: db, postgres: driver == "postgres"}
	if err := s.initialize(driver); err != nil {
		return nil, err
	}
	return s, nil
}

// ph returns the driver-appropriate positional placeholder: sqlite3
// uses "?", postgres (via pgx) requires "$1", "$2", ...
func (s *Store) ph(n int) string {
	if s.postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *Store) initialize(driver string) error {
	serialType := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		serialType = "BIGSERIAL PRIMARY KEY"
	}
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS runs (
	id %s,
	timestamp TIMESTAMP NOT NULL,
	input_path TEXT NOT NULL,
	success BOOLEAN NOT NULL,
	error_count INTEGER NOT NULL,
	first_error TEXT
)`, serialType)

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("history: initialize schema: %w", err)
	}
	return nil
}

// Record inserts a new Run.
func (s *Store) Record(r Run) error {
	query := fmt.Sprintf(
		`INSERT INTO runs (timestamp, input_path, success, error_count, first_error) VALUES (%s, %s, %s, %s, %s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5),
	)
	_, err := s.db.Exec(query, r.Timestamp, r.InputPath, r.Success, r.ErrorCount, r.FirstError)
	if err != nil {
		return fmt.Errorf("history: record run: %w", err)
	}
	return nil
}

// Recent returns the last n runs, most recent first. onlyFailed
// restricts the result to runs where Success is false.
func (s *Store) Recent(n int, onlyFailed bool) ([]Run, error) {
	query := `SELECT id, timestamp, input_path, success, error_count, first_error FROM runs`
	if onlyFailed {
		query += fmt.Sprintf(` WHERE success = %s`, s.ph(1))
		query += fmt.Sprintf(` ORDER BY id DESC LIMIT %s`, s.ph(2))
	} else {
		query += fmt.Sprintf(` ORDER BY id DESC LIMIT %s`, s.ph(1))
	}

	var rows *sql.Rows
	var err error
	if onlyFailed {
		rows, err = s.db.Query(query, false, n)
	} else {
		rows, err = s.db.Query(query, n)
	}
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var firstError sql.NullString
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.InputPath, &r.Success, &r.ErrorCount, &firstError); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.FirstError = firstError.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
