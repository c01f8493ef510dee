package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aristath/taskbrief/internal/taskparse"
)

// SaveTaskList stores a parsed task list in one transaction and returns its ID.
// Task order is preserved by position.
func (s *SQLiteStore) SaveTaskList(ctx context.Context, source string, tasks []taskparse.Task) (int64, error) {
	var listID int64
	err := withRetry(ctx, s.breaker, s.retry, func() error {
		id, err := s.saveTaskList(ctx, source, tasks)
		listID = id
		return err
	})
	return listID, err
}

func (s *SQLiteStore) saveTaskList(ctx context.Context, source string, tasks []taskparse.Task) (int64, error) {
	// Begin transaction with serializable isolation (BEGIN IMMEDIATE)
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO task_lists (source, created_at)
		VALUES (?, CURRENT_TIMESTAMP)
	`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task list: %w", err)
	}
	listID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get task list id: %w", err)
	}

	for i, task := range tasks {
		// Values never contain commas: the parser splits list properties on them.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (list_id, position, title, description, context, dependencies, priority, focus, completed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, listID, i, task.Title, task.Description,
			strings.Join(task.Context, ","), strings.Join(task.Dependencies, ","),
			task.Priority, task.Focus, task.Completed)
		if err != nil {
			return 0, fmt.Errorf("failed to insert task %q: %w", task.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return listID, nil
}

// GetTaskList retrieves a saved list and its tasks in original order.
func (s *SQLiteStore) GetTaskList(ctx context.Context, id int64) (*TaskList, error) {
	list := &TaskList{ID: id}

	err := s.db.QueryRowContext(ctx, `
		SELECT source, created_at
		FROM task_lists
		WHERE id = ?
	`, id).Scan(&list.Source, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task list not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, description, context, dependencies, priority, focus, completed
		FROM tasks
		WHERE list_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	list.Tasks = []taskparse.Task{}
	for rows.Next() {
		var task taskparse.Task
		var contextRefs, dependencies string
		if err := rows.Scan(&task.Title, &task.Description, &contextRefs, &dependencies, &task.Priority, &task.Focus, &task.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task.Context = splitStored(contextRefs)
		task.Dependencies = splitStored(dependencies)
		list.Tasks = append(list.Tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return list, nil
}

// ListTaskLists returns a summary of every saved list, newest first.
func (s *SQLiteStore) ListTaskLists(ctx context.Context) ([]TaskListSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.source, l.created_at, COUNT(t.position)
		FROM task_lists l
		LEFT JOIN tasks t ON t.list_id = l.id
		GROUP BY l.id
		ORDER BY l.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query task lists: %w", err)
	}
	defer rows.Close()

	var lists []TaskListSummary
	for rows.Next() {
		var sum TaskListSummary
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.CreatedAt, &sum.TaskCount); err != nil {
			return nil, fmt.Errorf("failed to scan task list: %w", err)
		}
		lists = append(lists, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task lists: %w", err)
	}

	return lists, nil
}

// SetTaskCompleted updates the checkbox state of one task.
func (s *SQLiteStore) SetTaskCompleted(ctx context.Context, listID int64, position int, completed bool) error {
	return withRetry(ctx, s.breaker, s.retry, func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE tasks
			SET completed = ?
			WHERE list_id = ? AND position = ?
		`, completed, listID, position)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("task not found: list %d position %d", listID, position)
		}
		return nil
	})
}

// DeleteTaskList removes a list together with its tasks and snapshots.
func (s *SQLiteStore) DeleteTaskList(ctx context.Context, id int64) error {
	return withRetry(ctx, s.breaker, s.retry, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM task_lists WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete task list: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("task list not found: %d", id)
		}
		return nil
	})
}

func splitStored(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
