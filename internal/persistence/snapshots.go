package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aristath/taskbrief/internal/contextgather"
)

// SaveSnapshot stores a gather result and returns the snapshot ID.
// listID ties the snapshot to a saved task list; 0 leaves it unattached.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, listID int64, result *contextgather.Result) (int64, error) {
	var snapshotID int64
	err := withRetry(ctx, s.breaker, s.retry, func() error {
		id, err := s.saveSnapshot(ctx, listID, result)
		snapshotID = id
		return err
	})
	return snapshotID, err
}

func (s *SQLiteStore) saveSnapshot(ctx context.Context, listID int64, result *contextgather.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var list sql.NullInt64
	if listID != 0 {
		list = sql.NullInt64{Int64: listID, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (list_id, created_at)
		VALUES (?, CURRENT_TIMESTAMP)
	`, list)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot id: %w", err)
	}

	for i, entry := range result.List() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_files (snapshot_id, position, path, kind, content, message)
			VALUES (?, ?, ?, ?, ?, ?)
		`, snapshotID, i, entry.Path, int(entry.Kind), entry.Content, entry.Message)
		if err != nil {
			return 0, fmt.Errorf("failed to insert snapshot file %s: %w", entry.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return snapshotID, nil
}

// GetSnapshot rebuilds the gather result stored under id.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, id int64) (*contextgather.Result, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM snapshots WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, kind, content, message
		FROM snapshot_files
		WHERE snapshot_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot files: %w", err)
	}
	defer rows.Close()

	result := &contextgather.Result{Entries: make(map[string]contextgather.Entry)}
	for rows.Next() {
		var entry contextgather.Entry
		var kind int
		if err := rows.Scan(&entry.Path, &kind, &entry.Content, &entry.Message); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot file: %w", err)
		}
		entry.Kind = contextgather.Kind(kind)

		// Reconstruct error if present
		if entry.Kind == contextgather.KindReadError && entry.Message != "" {
			entry.Err = fmt.Errorf("%s", entry.Message)
		}

		result.Order = append(result.Order, entry.Path)
		result.Entries[entry.Path] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot files: %w", err)
	}

	return result, nil
}

// LatestSnapshot returns the newest snapshot attached to listID.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context, listID int64) (int64, *contextgather.Result, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM snapshots
		WHERE list_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, listID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil, fmt.Errorf("no snapshot for task list %d", listID)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	result, err := s.GetSnapshot(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	return id, result, nil
}
