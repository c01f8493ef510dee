package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/scheduler"
)

var orderCmd = &cobra.Command{
	Use:   "order [file]",
	Short: "Print tasks in dependency order",
	Long:  `Print the tasks of a task list grouped into waves. Every task appears after the tasks it depends on; tasks in the same wave are independent of each other.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOrder,
}

func runOrder(cmd *cobra.Command, args []string) error {
	result, err := readTasks(taskFile(args))
	if err != nil {
		return err
	}

	dag, err := scheduler.BuildDAG(result.Tasks)
	if err != nil {
		return err
	}
	waves, err := dag.Waves()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WAVE\tID\tSTATUS\tDEPENDS ON\tUNBLOCKS")
	for i, wave := range waves {
		for _, id := range wave {
			task, _ := dag.Get(id)
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, task.ID, task.Status,
				joinOrDash(task.DependsOn), joinOrDash(dag.Dependents(id)))
		}
	}
	return w.Flush()
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
