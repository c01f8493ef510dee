package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a task list and print it as JSON",
	Long:  `Parse a markdown task list and print the extracted tasks as JSON. Without a file, the configured task list is used.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	path := taskFile(args)
	result, err := readTasks(path)
	if err != nil {
		return err
	}

	if saveFlag {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.SaveTaskList(cmd.Context(), path, result.Tasks)
		if err != nil {
			return fmt.Errorf("failed to save task list: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved task list %d (%d tasks)\n", id, len(result.Tasks))
	}

	return writeJSON(cmd.OutOrStdout(), result)
}
