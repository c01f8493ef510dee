package config

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		TasksFile: "TASKS.md",
		StorePath: ".taskbrief/taskbrief.db",
		Gather: GatherConfig{
			Concurrency: 4,
		},
		Prompt: PromptConfig{
			Header:       "You are working on the following task.",
			MaxFileBytes: 64 * 1024,
		},
		ContextSets: map[string][]string{
			"project": {"README.md", "go.mod"},
		},
	}
}
