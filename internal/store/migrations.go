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

CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS lists (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'todo' CHECK(status IN ('todo', 'in_progress', 'completed')),
	priority     TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
	due_date     DATETIME,
	list_id      TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	created_by   TEXT NOT NULL,
	assignee     TEXT,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_tasks_list_id ON tasks(list_id);
CREATE INDEX IF NOT EXISTS idx_tasks_workspace_id ON tasks(workspace_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	author     TEXT NOT NULL,
	parent_id  TEXT REFERENCES comments(id) ON DELETE SET NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	edited_at  DATETIME,
	is_deleted INTEGER NOT NULL DEFAULT 0 CHECK(is_deleted IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_comments_task_id ON comments(task_id, created_at);
CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id);

CREATE TABLE IF NOT EXISTS subtasks (
	id           TEXT PRIMARY KEY,
	task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	description  TEXT,
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at DATETIME,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	CHECK ((completed = 1) = (completed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_subtasks_task_id ON subtasks(task_id);

CREATE TABLE IF NOT EXISTS collaborators (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL CHECK(role IN ('owner', 'assignee', 'reviewer', 'observer')),
	created_at DATETIME NOT NULL,
	UNIQUE(task_id, user_id)
);

CREATE TABLE IF NOT EXISTS tags (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	color        TEXT NOT NULL DEFAULT '',
	workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
	created_at   DATETIME NOT NULL,
	UNIQUE(workspace_id, name)
);

CREATE TABLE IF NOT EXISTS task_tags (
	task_tag_id TEXT PRIMARY KEY,
	task_id     TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	tag_id      TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	assigned_at DATETIME NOT NULL,
	UNIQUE(task_id, tag_id)
);

CREATE TABLE IF NOT EXISTS activity (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	actor      TEXT NOT NULL,
	type       TEXT NOT NULL,
	payload    TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_task_id ON activity(task_id, seq);
CREATE INDEX IF NOT EXISTS idx_activity_type ON activity(task_id, type);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS friendships (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	friend_id  TEXT NOT NULL,
	pair_key   TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'accepted', 'rejected')),
	created_at DATETIME NOT NULL,
	CHECK (user_id != friend_id)
);

CREATE INDEX IF NOT EXISTS idx_friendships_user_id ON friendships(user_id);
CREATE INDEX IF NOT EXISTS idx_friendships_friend_id ON friendships(friend_id);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
