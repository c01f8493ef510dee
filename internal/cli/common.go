package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aristath/taskbrief/internal/contextgather"
	"github.com/aristath/taskbrief/internal/persistence"
	"github.com/aristath/taskbrief/internal/taskparse"
)

// taskFile returns the task list named on the command line, or the configured default.
func taskFile(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.TasksFile
}

// readTasks loads and parses a task list. Headers skipped for an empty title
// are logged, as is a document with nothing task-shaped in it.
func readTasks(path string) (taskparse.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return taskparse.Result{}, fmt.Errorf("failed to read task list: %w", err)
	}

	result := taskparse.ParseDocument(string(data))
	for _, d := range result.Skipped {
		log.Printf("WARNING: %s: %s", path, d)
	}
	if result.Empty() && !taskparse.LooksLikeTaskList(string(data)) {
		log.Printf("WARNING: %s contains no task headers", path)
	}
	return result, nil
}

func newGatherer(reporter contextgather.Reporter) *contextgather.Gatherer {
	return contextgather.New(
		contextgather.WithBaseDir(cfg.Gather.BaseDir),
		contextgather.WithConcurrency(cfg.Gather.Concurrency),
		contextgather.WithReporter(reporter),
	)
}

func openStore(ctx context.Context) (*persistence.SQLiteStore, error) {
	store, err := persistence.NewSQLiteStore(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
