package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/brief"
	"github.com/aristath/taskbrief/internal/contextgather"
	"github.com/aristath/taskbrief/internal/events"
	"github.com/aristath/taskbrief/internal/persistence"
	"github.com/aristath/taskbrief/internal/taskparse"
	"github.com/aristath/taskbrief/internal/tui"
)

var (
	viewWith []string
	viewList int64
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Browse tasks and their prompts interactively",
	Long: `Open a terminal UI listing the tasks in dependency order, the prompt for the selected task, and any problems gathering context.

With --save the list is stored first and ticking a task off (x) is saved to it. With --list a saved list is opened instead of a file, and ticks are saved back to it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringSliceVar(&viewWith, "with", nil, "Add a configured context set to every task")
	viewCmd.Flags().Int64Var(&viewList, "list", 0, "Open a saved task list by id")
}

// viewSource is the task list a view session browses, and the saved list
// toggles are written to (listID 0 when nothing is saved).
type viewSource struct {
	name    string
	tasks   []taskparse.Task
	skipped int
	listID  int64
}

func loadViewSource(ctx context.Context, w io.Writer, store *persistence.SQLiteStore, args []string) (viewSource, error) {
	if viewList > 0 {
		list, err := store.GetTaskList(ctx, viewList)
		if err != nil {
			return viewSource{}, err
		}
		return viewSource{name: list.Source, tasks: list.Tasks, listID: list.ID}, nil
	}

	path := taskFile(args)
	result, err := readTasks(path)
	if err != nil {
		return viewSource{}, err
	}
	src := viewSource{name: path, tasks: result.Tasks, skipped: len(result.Skipped)}
	if store != nil {
		if src.listID, err = store.SaveTaskList(ctx, path, result.Tasks); err != nil {
			return viewSource{}, fmt.Errorf("failed to save task list: %w", err)
		}
		fmt.Fprintf(w, "Saved task list %d (%d tasks)\n", src.listID, len(result.Tasks))
	}
	return src, nil
}

func runView(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var store *persistence.SQLiteStore
	if saveFlag || viewList > 0 {
		var err error
		if store, err = openStore(ctx); err != nil {
			return err
		}
		defer store.Close()
	}

	src, err := loadViewSource(ctx, cmd.ErrOrStderr(), store, args)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so the log goes to a file
	// beside the store while the program runs.
	logPath := filepath.Join(filepath.Dir(cfg.StorePath), "view.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "taskbrief")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("")
		logFile.Close()
	}()

	// Create event bus
	bus := events.NewEventBus()
	defer bus.Close()

	reporter := contextgather.MultiReporter{
		contextgather.LogReporter{},
		events.Reporter{Bus: bus},
	}
	builder, err := newBuilder(reporter, bus, viewWith)
	if err != nil {
		return err
	}

	model := tui.New(bus, cfg, globalPath, projectPath, func() ([]brief.Brief, error) {
		return builder.Build(ctx, src.tasks)
	})
	if store != nil {
		listID := src.listID
		model = model.WithToggler(func(br brief.Brief, done bool) error {
			return store.SetTaskCompleted(ctx, listID, br.Index, done)
		})
	}
	bus.Publish(events.TasksParsedEvent{
		Source:    src.name,
		Count:     len(src.tasks),
		Skipped:   src.skipped,
		Timestamp: time.Now(),
	})

	// The program exits on its own when ctx is cancelled (Ctrl+C or SIGTERM)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		log.Println("Shutdown signal received")
	}
	return nil
}
