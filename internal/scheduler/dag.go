package scheduler

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gammazero/toposort"

	"github.com/aristath/taskbrief/internal/taskparse"
)

// DAG represents the dependency graph of a parsed task list.
type DAG struct {
	mu         sync.RWMutex
	tasks      map[string]*Task    // All tasks indexed by ID
	order      []string            // IDs in source order
	dependents map[string][]string // Maps taskID -> list of tasks that depend on it
	aliases    map[string]string   // Lower-cased key or title -> ID
}

// NewDAG creates an empty DAG.
func NewDAG() *DAG {
	return &DAG{
		tasks:      make(map[string]*Task),
		dependents: make(map[string][]string),
		aliases:    make(map[string]string),
	}
}

// BuildDAG creates a DAG from parsed tasks. Each task is keyed by TaskKey of
// its title; a key already taken falls back to the full title, then to a
// numbered title. Dependencies are matched case-insensitively against keys and
// full titles. Unmatched dependencies are kept verbatim so Validate reports them.
func BuildDAG(parsed []taskparse.Task) (*DAG, error) {
	d := NewDAG()

	nodes := make([]*Task, 0, len(parsed))
	for i, pt := range parsed {
		status := TaskPending
		if pt.Completed {
			status = TaskCompleted
		}
		node := &Task{
			ID:     d.uniqueID(pt.Title),
			Index:  i,
			Status: status,
			Source: pt,
		}
		if err := d.AddTask(node); err != nil {
			return nil, err
		}
		d.alias(TaskKey(pt.Title), node.ID)
		d.alias(pt.Title, node.ID)
		nodes = append(nodes, node)
	}

	// Dependencies can point forward, so resolve them once every alias exists.
	for _, node := range nodes {
		seen := make(map[string]bool)
		for _, dep := range node.Source.Dependencies {
			if noDependency[strings.ToLower(dep)] {
				continue
			}
			id, ok := d.Resolve(dep)
			if !ok {
				id = dep
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			node.DependsOn = append(node.DependsOn, id)
			d.dependents[id] = append(d.dependents[id], node.ID)
		}
	}

	return d, nil
}

// AddTask adds a task to the DAG. Returns error if task ID already exists.
func (d *DAG) AddTask(task *Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %q already exists", task.ID)
	}

	d.tasks[task.ID] = task
	d.order = append(d.order, task.ID)
	if _, taken := d.aliases[strings.ToLower(task.ID)]; !taken {
		d.aliases[strings.ToLower(task.ID)] = task.ID
	}

	for _, depID := range task.DependsOn {
		d.dependents[depID] = append(d.dependents[depID], task.ID)
	}

	return nil
}

// Resolve finds the task ID a reference names: an ID, key, or full title,
// compared case-insensitively.
func (d *DAG) Resolve(ref string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ref = strings.TrimSpace(ref)
	if id, ok := d.aliases[strings.ToLower(ref)]; ok {
		return id, true
	}
	if id, ok := d.aliases[strings.ToLower(TaskKey(ref))]; ok {
		return id, true
	}
	return "", false
}

func (d *DAG) alias(name, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if _, taken := d.aliases[name]; !taken {
		d.aliases[name] = id
	}
}

func (d *DAG) uniqueID(title string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	key := TaskKey(title)
	if _, taken := d.tasks[key]; !taken {
		return key
	}
	if _, taken := d.tasks[title]; !taken {
		return title
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", title, n)
		if _, taken := d.tasks[candidate]; !taken {
			return candidate
		}
	}
}

// Validate runs topological sort using gammazero/toposort.
// Returns ordered task IDs or error if cycle detected.
// Also verifies all task IDs in DependsOn exist in the DAG.
func (d *DAG) Validate() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, taskID := range d.order {
		for _, depID := range d.tasks[taskID].DependsOn {
			if _, exists := d.tasks[depID]; !exists {
				return nil, fmt.Errorf("task %q depends on non-existent task %q", taskID, depID)
			}
		}
	}

	var edges []toposort.Edge
	for _, taskID := range d.order {
		task := d.tasks[taskID]
		if len(task.DependsOn) == 0 {
			// Task with no dependencies - add edge from nil to ensure it's included
			edges = append(edges, toposort.Edge{nil, taskID})
			continue
		}
		for _, depID := range task.DependsOn {
			// Edge (depID, taskID) means depID must come before taskID
			edges = append(edges, toposort.Edge{depID, taskID})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("task dependencies contain a cycle: %w", err)
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	if len(order) != len(d.tasks) {
		found := make(map[string]bool, len(order))
		for _, id := range order {
			found[id] = true
		}
		var missing []string
		for _, taskID := range d.order {
			if !found[taskID] {
				missing = append(missing, taskID)
			}
		}
		return nil, fmt.Errorf("topological sort lost %d tasks: %s", len(missing), strings.Join(missing, ", "))
	}

	return order, nil
}

// Waves groups task IDs into layers: every task's dependencies sit in earlier
// layers. Within a layer tasks keep their source order.
func (d *DAG) Waves() ([][]string, error) {
	if _, err := d.Validate(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	placed := make(map[string]bool, len(d.order))
	var waves [][]string
	for len(placed) < len(d.order) {
		var wave []string
		for _, id := range d.order {
			if placed[id] {
				continue
			}
			ready := true
			for _, depID := range d.tasks[id].DependsOn {
				if !placed[depID] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, id)
			}
		}
		if len(wave) == 0 {
			return nil, fmt.Errorf("no schedulable tasks among %d remaining", len(d.order)-len(placed))
		}
		for _, id := range wave {
			placed[id] = true
		}
		waves = append(waves, wave)
	}
	return waves, nil
}

// Order returns a deterministic topological order: Waves flattened.
func (d *DAG) Order() ([]string, error) {
	waves, err := d.Waves()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, wave := range waves {
		order = append(order, wave...)
	}
	return order, nil
}

// Eligible returns pending tasks whose dependencies are all completed, in source order.
func (d *DAG) Eligible() []*Task {
	d.mu.RLock()
	defer d.mu.RUnlock()

	eligible := []*Task{}
	for _, id := range d.order {
		task := d.tasks[id]
		if task.Status != TaskPending {
			continue
		}
		allResolved := true
		for _, depID := range task.DependsOn {
			dep, exists := d.tasks[depID]
			if !exists || dep.Status != TaskCompleted {
				allResolved = false
				break
			}
		}
		if allResolved {
			eligible = append(eligible, cloneTask(task))
		}
	}
	return eligible
}

// MarkCompleted sets task status to TaskCompleted.
func (d *DAG) MarkCompleted(taskID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	task, exists := d.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}
	task.Status = TaskCompleted
	return nil
}

// MarkPending clears a completed task back to TaskPending.
func (d *DAG) MarkPending(taskID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	task, exists := d.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}
	task.Status = TaskPending
	return nil
}

// Dependents returns the IDs of tasks that depend on taskID.
func (d *DAG) Dependents(taskID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.dependents[taskID]...)
}

// Get returns task by ID.
func (d *DAG) Get(taskID string) (*Task, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	task, exists := d.tasks[taskID]
	if !exists {
		return nil, false
	}
	return cloneTask(task), true
}

// Tasks returns all tasks in source order.
func (d *DAG) Tasks() []*Task {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tasks := make([]*Task, 0, len(d.order))
	for _, id := range d.order {
		tasks = append(tasks, cloneTask(d.tasks[id]))
	}
	return tasks
}

func cloneTask(task *Task) *Task {
	if task == nil {
		return nil
	}
	cp := *task
	if task.DependsOn != nil {
		cp.DependsOn = append([]string(nil), task.DependsOn...)
	}
	return &cp
}
