// Package content provides read access to the current content-graph version:
// nodes, typed edges with propagation distributions, importance scores, and
// goal bindings. The graph is produced wholesale by an external pipeline and
// never mutated in place; a replacement version is accepted only through
// Swap, which enforces the ukey-stability invariant.
package content

import (
	"database/sql"
	"fmt"

	"hifz/engine/internal/errs"

	_ "modernc.org/sqlite"
)

// SchemaMajor is the content schema major version this engine understands.
// Stored in PRAGMA user_version; a mismatch refuses to open the store.
const SchemaMajor = 1

// Store wraps a read-mostly SQLite content database.
type Store struct {
	conn *sql.DB
	Path string
}

// Open opens a content database with WAL mode and foreign keys enabled, then
// checks the schema major version.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening content store: %w", err)
	}

	// WAL for concurrent readers during review transactions.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{conn: conn, Path: path}
	if err := s.checkSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) checkSchema() error {
	var v int
	if err := s.conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if v != SchemaMajor {
		return fmt.Errorf("%w: content store has schema v%d, engine wants v%d — upgrade required",
			errs.ErrVersionIncompatible, v, SchemaMajor)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Version returns the content version identifier written at ingest time.
func (s *Store) Version() (string, error) {
	var v string
	err := s.conn.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("content store has no version: %w", errs.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading content version: %w", err)
	}
	return v, nil
}
