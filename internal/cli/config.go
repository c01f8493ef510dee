package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/taskbrief/internal/config"
)

var configGlobal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings",
	Long:  `Read merged settings or change one setting in the project (or global) config file. Keys are dotted paths such as prompt.header or context_sets.docs.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in the project config",
	Long:  `Change one setting. Values that parse as JSON (numbers, booleans, arrays) are stored as JSON; anything else is stored as a string.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configSetCmd.Flags().BoolVar(&configGlobal, "global", false, "Write to the global config instead of the project config")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, ok, err := config.Value(cfg, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not set", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := projectPath
	if configGlobal {
		path = globalPath
	}
	if err := config.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Updated %s in %s\n", args[0], path)
	return nil
}
