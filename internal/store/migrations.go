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

CREATE TABLE IF NOT EXISTS messages (
	id            TEXT PRIMARY KEY,
	uid           INTEGER NOT NULL UNIQUE,
	message_id    TEXT NOT NULL DEFAULT '',
	subject       TEXT NOT NULL DEFAULT '',
	from_name     TEXT NOT NULL DEFAULT '',
	from_address  TEXT NOT NULL DEFAULT '',
	to_addrs      TEXT NOT NULL DEFAULT '[]',
	date          DATETIME NOT NULL,
	flags         TEXT NOT NULL DEFAULT '[]',
	text_body     TEXT NOT NULL DEFAULT '',
	html_body     TEXT NOT NULL DEFAULT '',
	rendered_html TEXT NOT NULL DEFAULT '',
	rendered_text TEXT NOT NULL DEFAULT '',
	fetched_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL UNIQUE,
	times_contacted  INTEGER NOT NULL DEFAULT 0,
	last_contacted   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_date ON messages(date);
CREATE INDEX IF NOT EXISTS idx_messages_message_id ON messages(message_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_contacts_address ON contacts(address);
CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
CREATE INDEX IF NOT EXISTS idx_messages_fetched_at ON messages(fetched_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
