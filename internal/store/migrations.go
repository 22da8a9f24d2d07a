package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
	name         TEXT PRIMARY KEY,
	summary      TEXT NOT NULL DEFAULT '{}',
	last_updated DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	collection       TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	message_id       TEXT NOT NULL DEFAULT '',
	subject          TEXT NOT NULL DEFAULT '',
	sender           TEXT NOT NULL DEFAULT '',
	sent_at          DATETIME,
	importance_score INTEGER NOT NULL DEFAULT 0,
	payload          TEXT NOT NULL,
	PRIMARY KEY (collection, position)
);

CREATE INDEX IF NOT EXISTS idx_messages_message_id ON messages(collection, message_id);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS merge_runs (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	total      INTEGER NOT NULL,
	added      INTEGER NOT NULL,
	ran_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_merge_runs_collection ON merge_runs(collection, ran_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
