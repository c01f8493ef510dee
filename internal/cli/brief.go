package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/brief"
	"github.com/aristath/taskbrief/internal/contextgather"
	"github.com/aristath/taskbrief/internal/events"
	"github.com/aristath/taskbrief/internal/taskparse"
)

var (
	briefTask string
	briefWith []string
)

var briefCmd = &cobra.Command{
	Use:   "brief [file]",
	Short: "Print the prompt for each task",
	Long:  `Gather the context each task names and print one prompt per task in dependency order. Use --task to print a single task by position (1-based), key, or title.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrief,
}

func init() {
	briefCmd.Flags().StringVar(&briefTask, "task", "", "Only print this task (position, key, or title)")
	briefCmd.Flags().StringSliceVar(&briefWith, "with", nil, "Add a configured context set to every task")
}

// newBuilder creates a brief builder from the loaded config. Named context
// sets must exist in the config.
func newBuilder(reporter contextgather.Reporter, bus *events.EventBus, sets []string) (*brief.Builder, error) {
	opts := []brief.Option{
		brief.WithHeader(cfg.Prompt.Header),
		brief.WithMaxFileBytes(cfg.Prompt.MaxFileBytes),
	}
	for _, name := range sets {
		paths, ok := cfg.ContextSets[name]
		if !ok {
			return nil, fmt.Errorf("unknown context set %q", name)
		}
		opts = append(opts, brief.WithExtraPaths(paths...))
	}
	if bus != nil {
		opts = append(opts, brief.WithEventBus(bus))
	}
	return brief.New(newGatherer(reporter), opts...), nil
}

func runBrief(cmd *cobra.Command, args []string) error {
	path := taskFile(args)
	result, err := readTasks(path)
	if err != nil {
		return err
	}

	builder, err := newBuilder(contextgather.LogReporter{}, nil, briefWith)
	if err != nil {
		return err
	}
	briefs, err := builder.Build(cmd.Context(), result.Tasks)
	if err != nil {
		return err
	}

	if briefTask != "" {
		br, ok := brief.Find(briefs, briefTask)
		if !ok {
			return fmt.Errorf("no task matches %q", briefTask)
		}
		briefs = []brief.Brief{br}
	}

	if saveFlag {
		if err := saveBriefs(cmd, path, result.Tasks, briefs); err != nil {
			return err
		}
	}

	return printBriefs(cmd.OutOrStdout(), briefs)
}

// saveBriefs stores the task list and one snapshot per brief.
func saveBriefs(cmd *cobra.Command, source string, tasks []taskparse.Task, briefs []brief.Brief) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	listID, err := store.SaveTaskList(ctx, source, tasks)
	if err != nil {
		return fmt.Errorf("failed to save task list: %w", err)
	}
	for _, br := range briefs {
		if _, err := store.SaveSnapshot(ctx, listID, br.Files); err != nil {
			return fmt.Errorf("failed to save snapshot for %q: %w", br.ID, err)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved task list %d with %d snapshots\n", listID, len(briefs))
	return nil
}

func printBriefs(w io.Writer, briefs []brief.Brief) error {
	for i, br := range briefs {
		if i > 0 {
			if _, err := fmt.Fprint(w, "\n---\n\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, br.Prompt); err != nil {
			return err
		}
	}
	return nil
}
