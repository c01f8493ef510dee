package taskparse

import "strings"

// DefaultPriority is assigned when a task has no Priority property.
const DefaultPriority = "medium"

// Task is a single entry extracted from a markdown task list.
type Task struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Context      []string `json:"context"`      // File or symbol references
	Dependencies []string `json:"dependencies"` // Titles or keys of prerequisite tasks
	Priority     string   `json:"priority"`     // Lower-cased, open set
	Focus        string   `json:"focus"`
	Completed    bool     `json:"completed"` // Header checkbox was [x]
}

// Diagnostic describes a header-shaped line that did not produce a task.
type Diagnostic struct {
	Line   int    `json:"line"` // 1-based
	Reason string `json:"reason"`
}

// Result is the outcome of parsing a whole document.
type Result struct {
	Tasks   []Task       `json:"tasks"`
	Skipped []Diagnostic `json:"skipped,omitempty"`
}

// Empty reports whether no tasks were extracted.
func (r Result) Empty() bool {
	return len(r.Tasks) == 0
}

func newTask(title string, completed bool) Task {
	return Task{
		Title:        title,
		Context:      []string{},
		Dependencies: []string{},
		Priority:     DefaultPriority,
		Completed:    completed,
	}
}

// apply stores a recognized property value. Later occurrences replace earlier ones.
func (t *Task) apply(name, value string) {
	switch name {
	case PropertyContext:
		t.Context = splitList(value)
	case PropertyDependencies:
		t.Dependencies = splitList(value)
	case PropertyPriority:
		t.Priority = strings.ToLower(value)
	case PropertyFocus:
		t.Focus = value
	}
}
