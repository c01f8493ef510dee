package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/config"
)

var (
	cfg         *config.Config
	globalPath  string
	projectPath string

	baseDirFlag string
	saveFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "taskbrief",
	Short: "Turn a markdown task list into agent-ready briefs",
	Long: `taskbrief parses a markdown task list, orders the tasks by their
dependencies, and gathers the files each task names so the result can be
handed to a coding agent.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", "", "Resolve relative context paths against this directory")
	rootCmd.PersistentFlags().BoolVar(&saveFlag, "save", false, "Persist results to the store")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(gatherCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig merges defaults, the global config, and the project config, then
// applies flag overrides.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	globalPath, projectPath, err = config.DefaultPaths()
	if err != nil {
		return err
	}

	cfg, err = config.Load(globalPath, projectPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if baseDirFlag != "" {
		cfg.Gather.BaseDir = baseDirFlag
	}
	return nil
}
