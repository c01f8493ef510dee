package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.json")

	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Config file was not created: %s", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{
		TasksFile: "ROADMAP.md",
		StorePath: "/tmp/briefs.db",
		Gather:    GatherConfig{BaseDir: "/src/app", Concurrency: 2},
		Prompt:    PromptConfig{Header: "Do the thing.", MaxFileBytes: 1024},
		ContextSets: map[string][]string{
			"api": {"api/openapi.yaml", "api/handlers.go"},
		},
	}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.TasksFile != "ROADMAP.md" {
		t.Errorf("TasksFile mismatch: got '%s'", loaded.TasksFile)
	}
	if loaded.Gather.BaseDir != "/src/app" || loaded.Gather.Concurrency != 2 {
		t.Errorf("Gather mismatch: got %+v", loaded.Gather)
	}
	if loaded.Prompt.MaxFileBytes != 1024 {
		t.Errorf("MaxFileBytes mismatch: got %d", loaded.Prompt.MaxFileBytes)
	}
	if len(loaded.ContextSets["api"]) != 2 {
		t.Errorf("api context set mismatch: got %v", loaded.ContextSets["api"])
	}
	// Defaults survive alongside saved sets.
	if _, ok := loaded.ContextSets["project"]; !ok {
		t.Error("default project context set missing after load")
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := Save(&Config{TasksFile: "first.md"}, path); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := Save(&Config{TasksFile: "second.md"}, path); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TasksFile != "second.md" {
		t.Errorf("Expected 'second.md', got '%s'", loaded.TasksFile)
	}
}
