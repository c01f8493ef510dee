package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/taskparse"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List saved task lists",
	Long:  `List the task lists saved with --save, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runLists,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved task list as markdown",
	Long:  `Print a saved task list in the task-list format it was parsed from. With --files, print the context most recently saved for it instead.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var doneCmd = &cobra.Command{
	Use:   "done <id> <position>",
	Short: "Tick off a task in a saved task list",
	Long:  `Mark the task at a 1-based position in a saved task list as completed. Use --undo to clear it again.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDone,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved task list",
	Long:  `Delete a saved task list together with its tasks and context snapshots.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <snapshot-id>",
	Short: "Print saved context as JSON",
	Long:  `Print the entries of a context snapshot saved by gather --save or brief --save.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

var (
	showFiles bool
	doneUndo  bool
)

func init() {
	showCmd.Flags().BoolVar(&showFiles, "files", false, "Print the latest context snapshot of the list as JSON")
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Mark the task as not completed")
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

func runLists(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	lists, err := store.ListTaskLists(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list task lists: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(lists) == 0 {
		fmt.Fprintln(out, "No saved task lists.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTASKS\tSAVED")
	for _, list := range lists {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n",
			list.ID,
			list.Source,
			list.TaskCount,
			formatAge(list.CreatedAt),
		)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task list id")
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.GetTaskList(cmd.Context(), id)
	if err != nil {
		return err
	}

	if showFiles {
		snapshotID, result, err := store.LatestSnapshot(cmd.Context(), list.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot %d of task list %d\n", snapshotID, list.ID)
		return writeJSON(cmd.OutOrStdout(), result.List())
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), taskparse.RenderAll(list.Tasks))
	return err
}

func runDone(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task list id")
	if err != nil {
		return err
	}
	position, err := parseID(args[1], "position")
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	// Positions are stored 0-based.
	if err := store.SetTaskCompleted(cmd.Context(), id, int(position)-1, !doneUndo); err != nil {
		return err
	}

	state := "completed"
	if doneUndo {
		state = "pending"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d of list %d marked %s\n", position, id, state)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "task list id")
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteTaskList(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task list %d\n", id)
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "snapshot id")
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.GetSnapshot(cmd.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result.List())
}

// formatAge returns a human-readable relative time string.
func formatAge(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return fmt.Sprintf("%dd ago", hours/24)
}
