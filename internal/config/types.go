package config

// GatherConfig controls how context files are read.
type GatherConfig struct {
	BaseDir     string `json:"base_dir,omitempty"`    // Relative paths resolve here; empty means cwd
	Concurrency int    `json:"concurrency,omitempty"` // Parallel file reads
}

// PromptConfig shapes the brief handed to an agent.
type PromptConfig struct {
	Header       string `json:"header,omitempty"`         // First line of every brief
	MaxFileBytes int    `json:"max_file_bytes,omitempty"` // Truncate embedded files past this size; 0 disables
}

// Config is the top-level configuration.
type Config struct {
	TasksFile   string              `json:"tasks_file,omitempty"` // Default task list for commands without an argument
	StorePath   string              `json:"store_path,omitempty"` // SQLite database for saved lists and snapshots
	Gather      GatherConfig        `json:"gather"`
	Prompt      PromptConfig        `json:"prompt"`
	ContextSets map[string][]string `json:"context_sets"` // Named path bundles added to briefs with --with
}
