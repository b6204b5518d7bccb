package userstore

// Timestamps are Unix millis throughout, matching the content pipeline.
// memory_states.last_reviewed_at = 0 means "never reviewed".
const schema = `
CREATE TABLE IF NOT EXISTS memory_states (
	user_id          TEXT NOT NULL,
	ukey             TEXT NOT NULL,
	stability        REAL NOT NULL DEFAULT 0,
	difficulty       REAL NOT NULL DEFAULT 0,
	energy           REAL NOT NULL DEFAULT 0,
	last_reviewed_at INTEGER NOT NULL DEFAULT 0,
	due_at           INTEGER NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, ukey)
);
CREATE INDEX IF NOT EXISTS idx_memory_due ON memory_states(user_id, due_at);

CREATE TABLE IF NOT EXISTS review_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	ukey        TEXT NOT NULL,
	rating      TEXT NOT NULL,
	reviewed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_review_log_user ON review_log(user_id, reviewed_at);

CREATE TABLE IF NOT EXISTS propagation_events (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	source_ukey TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS propagation_details (
	event_id     TEXT NOT NULL REFERENCES propagation_events(id),
	target_ukey  TEXT NOT NULL,
	energy_delta REAL NOT NULL,
	reason       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prop_details_event ON propagation_details(event_id);

CREATE TABLE IF NOT EXISTS bandit_states (
	user_id      TEXT NOT NULL,
	goal_group   TEXT NOT NULL,
	profile      TEXT NOT NULL,
	successes    REAL NOT NULL DEFAULT 1.0,
	failures     REAL NOT NULL DEFAULT 1.0,
	last_updated INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, goal_group, profile)
);

CREATE TABLE IF NOT EXISTS sessions (
	user_id    TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	goal_id    TEXT NOT NULL,
	profile    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_items (
	user_id  TEXT NOT NULL REFERENCES sessions(user_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	ukey     TEXT NOT NULL,
	PRIMARY KEY (user_id, position)
);
`
