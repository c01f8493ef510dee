package persistence

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		list_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		context TEXT NOT NULL,
		dependencies TEXT NOT NULL,
		priority TEXT NOT NULL,
		focus TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (list_id, position),
		FOREIGN KEY (list_id) REFERENCES task_lists(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		list_id INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (list_id) REFERENCES task_lists(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_list_id ON snapshots(list_id);

	CREATE TABLE IF NOT EXISTS snapshot_files (
		snapshot_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		kind INTEGER NOT NULL,
		content TEXT NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, position),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
