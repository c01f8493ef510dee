package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	_ "modernc.org/sqlite"

	"github.com/aristath/taskbrief/internal/contextgather"
	"github.com/aristath/taskbrief/internal/taskparse"
)

// TaskList is a saved parse of one document.
type TaskList struct {
	ID        int64
	Source    string
	CreatedAt time.Time
	Tasks     []taskparse.Task
}

// TaskListSummary describes a saved list without its tasks.
type TaskListSummary struct {
	ID        int64
	Source    string
	CreatedAt time.Time
	TaskCount int
}

// Store defines the persistence interface for task lists and gathered context.
type Store interface {
	// Task lists
	SaveTaskList(ctx context.Context, source string, tasks []taskparse.Task) (int64, error)
	GetTaskList(ctx context.Context, id int64) (*TaskList, error)
	ListTaskLists(ctx context.Context) ([]TaskListSummary, error)
	SetTaskCompleted(ctx context.Context, listID int64, position int, completed bool) error
	DeleteTaskList(ctx context.Context, id int64) error

	// Gathered context snapshots
	SaveSnapshot(ctx context.Context, listID int64, result *contextgather.Result) (int64, error)
	GetSnapshot(ctx context.Context, id int64) (*contextgather.Result, error)
	LatestSnapshot(ctx context.Context, listID int64) (int64, *contextgather.Result, error)

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	retry   RetryConfig
	breaker *gobreaker.CircuitBreaker
}

var _ Store = (*SQLiteStore)(nil)

var memoryStoreSeq atomic.Int64

// NewSQLiteStore creates a new SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign keys, and busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)
	return openStore(ctx, connStr, dbPath)
}

// NewMemoryStore creates an in-memory SQLite store for testing.
// Each store gets its own named shared-cache database so connections within
// one store see the same data while separate stores stay isolated.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	name := fmt.Sprintf("taskbrief-mem-%d", memoryStoreSeq.Add(1))
	connStr := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	return openStore(ctx, connStr, name)
}

func openStore(ctx context.Context, connStr, name string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Allow 2 connections: one for primary queries, one for nested reads.
	db.SetMaxOpenConns(2)

	store := &SQLiteStore{
		db:      db,
		retry:   DefaultRetryConfig(),
		breaker: newBreaker(name),
	}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// SetRetryConfig replaces the retry policy used for writes.
func (s *SQLiteStore) SetRetryConfig(cfg RetryConfig) {
	s.retry = cfg
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
