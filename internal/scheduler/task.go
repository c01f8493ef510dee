package scheduler

import (
	"strings"

	"github.com/aristath/taskbrief/internal/taskparse"
)

// TaskStatus represents where a task stands in the plan.
type TaskStatus int

const (
	TaskPending   TaskStatus = iota // Checkbox unticked
	TaskCompleted                   // Checkbox ticked, or marked done
)

func (s TaskStatus) String() string {
	if s == TaskCompleted {
		return "completed"
	}
	return "pending"
}

// Task is a node in the DAG wrapping one parsed task.
type Task struct {
	ID        string // Unique key derived from the title
	Index     int    // Position in the source document
	DependsOn []string
	Status    TaskStatus
	Source    taskparse.Task
}

// noDependency lists values people write in a Dependencies line to mean "nothing".
var noDependency = map[string]bool{
	"none": true,
	"n/a":  true,
	"na":   true,
	"-":    true,
}

// TaskKey returns the short identifier for a title: the text before the first
// colon when there is one ("Task 1: Parser" -> "Task 1"), else the whole title.
func TaskKey(title string) string {
	if i := strings.Index(title, ":"); i > 0 {
		if key := strings.TrimSpace(title[:i]); key != "" {
			return key
		}
	}
	return strings.TrimSpace(title)
}
