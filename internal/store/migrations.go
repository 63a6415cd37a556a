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

CREATE TABLE IF NOT EXISTS tasks (
	id           INTEGER PRIMARY KEY,
	user_id      INTEGER NOT NULL,
	todo_id      INTEGER,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'TODO',
	priority     TEXT NOT NULL DEFAULT 'MEDIUM',
	due_date     DATETIME,
	completed_at DATETIME,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY,
	user_id     INTEGER NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS dashboard (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_mutations (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	entity_id  INTEGER,
	payload    TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_todo_id ON tasks(todo_id);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_pending_created ON pending_mutations(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
