package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	return cfg, nil
}

// DefaultPaths returns the conventional config locations.
// Global: ~/.taskbrief/config.json
// Project: .taskbrief/config.json (relative to cwd)
func DefaultPaths() (globalPath, projectPath string, err error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".taskbrief", "config.json"), filepath.Join(".taskbrief", "config.json"), nil
}

// LoadDefault loads configuration from DefaultPaths.
func LoadDefault() (*Config, error) {
	globalPath, projectPath, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return Load(globalPath, projectPath)
}

// mergeConfigFile reads a JSON config file and merges it into the base config.
// Scalars override when set; context sets merge by name.
func mergeConfigFile(base *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // Missing file is not an error
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded.TasksFile != "" {
		base.TasksFile = loaded.TasksFile
	}
	if loaded.StorePath != "" {
		base.StorePath = loaded.StorePath
	}
	if loaded.Gather.BaseDir != "" {
		base.Gather.BaseDir = loaded.Gather.BaseDir
	}
	if loaded.Gather.Concurrency > 0 {
		base.Gather.Concurrency = loaded.Gather.Concurrency
	}
	if loaded.Prompt.Header != "" {
		base.Prompt.Header = loaded.Prompt.Header
	}
	if loaded.Prompt.MaxFileBytes != 0 {
		base.Prompt.MaxFileBytes = loaded.Prompt.MaxFileBytes
	}

	if base.ContextSets == nil {
		base.ContextSets = make(map[string][]string)
	}
	for name, paths := range loaded.ContextSets {
		base.ContextSets[name] = paths
	}

	return nil
}
