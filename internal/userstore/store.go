// Package userstore owns the mutable per-user state: spaced-repetition memory
// rows, bandit state, the append-only propagation audit trail, the review
// log, and the resumable session list. All rows are keyed by ukey, never by
// internal id, so they survive content-graph swaps unchanged.
//
// Writes follow a single-writer discipline: SQLite's busy timeout queues
// concurrent writers briefly, and exceeding it surfaces as a retryable
// ErrTransientStorage.
package userstore

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"hifz/engine/internal/errs"

	_ "modernc.org/sqlite"
)

// SchemaMajor is the user-store schema major version this engine understands.
const SchemaMajor = 1

// DefaultBusyTimeout is how long a writer waits for the lock before the
// operation fails as transient, in milliseconds.
const DefaultBusyTimeout = 5000

// Store wraps the per-user SQLite database.
type Store struct {
	conn *sql.DB
	Path string

	sessionMu sync.Mutex // serializes session save/resume/clear
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// row-level helpers run both standalone and inside a review transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Open opens (or creates) the user store, applies pragmas, gates on the
// schema major version, and runs migrations.
func Open(path string, busyTimeoutMS int) (*Store, error) {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = DefaultBusyTimeout
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening user store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS),
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	s := &Store{conn: conn, Path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	var v int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	switch v {
	case 0:
		// Fresh database.
		if _, err := s.conn.Exec(schema); err != nil {
			return fmt.Errorf("creating user schema: %w", err)
		}
		if _, err := s.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaMajor)); err != nil {
			return fmt.Errorf("stamping schema version: %w", err)
		}
		return nil
	case SchemaMajor:
		return nil
	default:
		return fmt.Errorf("%w: user store has schema v%d, engine wants v%d — upgrade required",
			errs.ErrVersionIncompatible, v, SchemaMajor)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Begin starts a write transaction. Lock contention past the busy timeout
// comes back as ErrTransientStorage.
func (s *Store) Begin() (*sql.Tx, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, mapBusy("beginning transaction", err)
	}
	return tx, nil
}

// mapBusy wraps SQLite lock-contention failures as ErrTransientStorage so
// callers can retry with backoff; everything else is wrapped as-is.
func mapBusy(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%s: %v: %w", op, err, errs.ErrTransientStorage)
	}
	return fmt.Errorf("%s: %w", op, err)
}
