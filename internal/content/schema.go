package content

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// schema is the content-graph DDL. The external content producer emits
// databases in this shape; Create exists for the producer boundary and for
// test fixtures.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id           INTEGER PRIMARY KEY,
	ukey         TEXT NOT NULL UNIQUE,
	node_type    TEXT NOT NULL,
	base_node_id INTEGER REFERENCES nodes(id),
	axis         TEXT,
	importance   REAL NOT NULL DEFAULT 0,
	seq          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS edges (
	source_id INTEGER NOT NULL REFERENCES nodes(id),
	target_id INTEGER NOT NULL REFERENCES nodes(id),
	edge_type TEXT NOT NULL,
	dist_kind TEXT NOT NULL,
	dist_p1   REAL NOT NULL,
	dist_p2   REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);

CREATE TABLE IF NOT EXISTS goals (
	goal_id    TEXT PRIMARY KEY,
	goal_group TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS goal_nodes (
	goal_id  TEXT NOT NULL REFERENCES goals(goal_id),
	node_id  INTEGER NOT NULL REFERENCES nodes(id),
	priority REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (goal_id, node_id)
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Create initializes an empty content database at path with the current
// schema version and a fresh content-version identifier.
func Create(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("creating content store: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating content schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaMajor)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stamping schema version: %w", err)
	}
	if _, err := conn.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('version', ?)`,
		uuid.NewString(),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stamping content version: %w", err)
	}
	return &Store{conn: conn, Path: path}, nil
}
