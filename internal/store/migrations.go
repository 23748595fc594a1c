package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations for the snapshot
// database. Versions must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
	id              TEXT PRIMARY KEY,
	viewer_id       TEXT NOT NULL,
	payload         TEXT NOT NULL,
	updated_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id              TEXT PRIMARY KEY,
	viewer_id       TEXT NOT NULL,
	payload         TEXT NOT NULL,
	timestamp       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_ops (
	id              TEXT PRIMARY KEY,
	kind            TEXT NOT NULL,
	target_id       TEXT NOT NULL DEFAULT '',
	payload         TEXT NOT NULL DEFAULT '{}',
	attempts        INTEGER NOT NULL DEFAULT 0,
	created_at      INTEGER NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
