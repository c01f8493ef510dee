package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/contextgather"
)

var gatherCmd = &cobra.Command{
	Use:   "gather <path>...",
	Short: "Read files and print their contents as JSON",
	Long:  `Read each path as text and print one entry per resolved path. Missing and unreadable files are reported and included as entries; they do not fail the command.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGather,
}

func runGather(cmd *cobra.Command, args []string) error {
	gatherer := newGatherer(contextgather.LogReporter{})

	result, err := gatherer.Gather(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("failed to gather context: %w", err)
	}

	if saveFlag {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.SaveSnapshot(cmd.Context(), 0, result)
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved snapshot %d (%d files)\n", id, len(result.Order))
	}

	return writeJSON(cmd.OutOrStdout(), result.List())
}
