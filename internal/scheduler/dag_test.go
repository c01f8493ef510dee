package scheduler

import (
	"reflect"
	"strings"
	"testing"

	"github.com/aristath/taskbrief/internal/taskparse"
)

// TestDAGValidate tests DAG validation with various graph structures.
func TestDAGValidate(t *testing.T) {
	tests := []struct {
		name        string
		setup       func() *DAG
		wantErr     bool
		errContains string
	}{
		{
			name: "valid linear chain",
			setup: func() *DAG {
				dag := NewDAG()
				dag.AddTask(&Task{ID: "A"})
				dag.AddTask(&Task{ID: "B", DependsOn: []string{"A"}})
				dag.AddTask(&Task{ID: "C", DependsOn: []string{"B"}})
				return dag
			},
		},
		{
			name: "valid parallel tasks",
			setup: func() *DAG {
				dag := NewDAG()
				dag.AddTask(&Task{ID: "A"})
				dag.AddTask(&Task{ID: "B"})
				dag.AddTask(&Task{ID: "C", DependsOn: []string{"A", "B"}})
				return dag
			},
		},
		{
			name: "direct cycle",
			setup: func() *DAG {
				dag := NewDAG()
				dag.AddTask(&Task{ID: "A", DependsOn: []string{"B"}})
				dag.AddTask(&Task{ID: "B", DependsOn: []string{"A"}})
				return dag
			},
			wantErr:     true,
			errContains: "cycle",
		},
		{
			name: "self-loop",
			setup: func() *DAG {
				dag := NewDAG()
				dag.AddTask(&Task{ID: "A", DependsOn: []string{"A"}})
				return dag
			},
			wantErr:     true,
			errContains: "cycle",
		},
		{
			name: "missing dependency",
			setup: func() *DAG {
				dag := NewDAG()
				dag.AddTask(&Task{ID: "A", DependsOn: []string{"nonexistent"}})
				return dag
			},
			wantErr:     true,
			errContains: "nonexistent",
		},
		{
			name: "duplicate task ID",
			setup: func() *DAG {
				dag := NewDAG()
				dag.AddTask(&Task{ID: "A"})
				if err := dag.AddTask(&Task{ID: "A"}); err == nil {
					t.Fatal("Expected error when adding duplicate task ID")
				}
				return dag
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dag := tt.setup()
			_, err := dag.Validate()

			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Error message %q doesn't contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestTaskKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Task 1: Implement parser", "Task 1"},
		{"Parser", "Parser"},
		{"  Spaced : tail", "Spaced"},
		{": leading colon", ": leading colon"},
	}
	for _, tt := range tests {
		if got := TaskKey(tt.title); got != tt.want {
			t.Errorf("TaskKey(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func parsedTasks() []taskparse.Task {
	return taskparse.Parse(`
- [ ] **Task 3: Brief builder:** Combine everything.
  - Dependencies: task 1, Task 2: Context gatherer
- [x] **Task 1: Markdown parser:** Parse the list.
  - Dependencies: None
- [ ] **Task 2: Context gatherer:** Read files.
  - Dependencies: Task 1
- [ ] **Docs:** Write them.
`)
}

func TestBuildDAG(t *testing.T) {
	dag, err := BuildDAG(parsedTasks())
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}

	tasks := dag.Tasks()
	gotIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		gotIDs = append(gotIDs, task.ID)
	}
	wantIDs := []string{"Task 3", "Task 1", "Task 2", "Docs"}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("IDs = %v, want %v", gotIDs, wantIDs)
	}

	brief, _ := dag.Get("Task 3")
	if !reflect.DeepEqual(brief.DependsOn, []string{"Task 1", "Task 2"}) {
		t.Errorf("Task 3 DependsOn = %v", brief.DependsOn)
	}

	parser, _ := dag.Get("Task 1")
	if len(parser.DependsOn) != 0 {
		t.Errorf("'None' should not be a dependency, got %v", parser.DependsOn)
	}
	if parser.Status != TaskCompleted {
		t.Errorf("checked task status = %v, want completed", parser.Status)
	}

	if deps := dag.Dependents("Task 1"); !reflect.DeepEqual(deps, []string{"Task 3", "Task 2"}) {
		t.Errorf("Dependents(Task 1) = %v", deps)
	}
}

func TestBuildDAGOrder(t *testing.T) {
	dag, err := BuildDAG(parsedTasks())
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}

	waves, err := dag.Waves()
	if err != nil {
		t.Fatalf("Waves failed: %v", err)
	}
	wantWaves := [][]string{{"Task 1", "Docs"}, {"Task 2"}, {"Task 3"}}
	if !reflect.DeepEqual(waves, wantWaves) {
		t.Errorf("Waves = %v, want %v", waves, wantWaves)
	}

	order, err := dag.Order()
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}
	wantOrder := []string{"Task 1", "Docs", "Task 2", "Task 3"}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("Order = %v, want %v", order, wantOrder)
	}

	sorted, err := dag.Validate()
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(sorted) != 4 {
		t.Errorf("Validate returned %d IDs, want 4", len(sorted))
	}
}

func TestBuildDAGDuplicateTitles(t *testing.T) {
	dag, err := BuildDAG(taskparse.Parse(`
- [ ] **Setup:** one
- [ ] **Setup:** two
- [ ] **Setup:** three
- [ ] **Build:** uses the first
  - Dependencies: setup
`))
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}

	var ids []string
	for _, task := range dag.Tasks() {
		ids = append(ids, task.ID)
	}
	want := []string{"Setup", "Setup (2)", "Setup (3)", "Build"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("IDs = %v, want %v", ids, want)
	}

	build, _ := dag.Get("Build")
	if !reflect.DeepEqual(build.DependsOn, []string{"Setup"}) {
		t.Errorf("Build DependsOn = %v", build.DependsOn)
	}
}

func TestBuildDAGUnknownDependency(t *testing.T) {
	dag, err := BuildDAG(taskparse.Parse("- [ ] **A:** x\n  - Dependencies: Ghost\n"))
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}
	if _, err := dag.Order(); err == nil || !strings.Contains(err.Error(), "Ghost") {
		t.Errorf("Order() error = %v, want mention of Ghost", err)
	}
}

func TestBuildDAGCycle(t *testing.T) {
	dag, err := BuildDAG(taskparse.Parse(`
- [ ] **A:** x
  - Dependencies: B
- [ ] **B:** y
  - Dependencies: A
`))
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}
	if _, err := dag.Waves(); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("Waves() error = %v, want cycle", err)
	}
}

// TestDAGEligible tests dependency resolution and task eligibility.
func TestDAGEligible(t *testing.T) {
	dag, err := BuildDAG(parsedTasks())
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}

	ids := func(tasks []*Task) []string {
		out := []string{}
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	// Task 1 is already checked off.
	if got := ids(dag.Eligible()); !reflect.DeepEqual(got, []string{"Task 2", "Docs"}) {
		t.Errorf("Eligible() = %v", got)
	}

	if err := dag.MarkCompleted("Task 2"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if got := ids(dag.Eligible()); !reflect.DeepEqual(got, []string{"Task 3", "Docs"}) {
		t.Errorf("Eligible() after Task 2 = %v", got)
	}

	if err := dag.MarkPending("Task 2"); err != nil {
		t.Fatalf("MarkPending failed: %v", err)
	}
	if got := ids(dag.Eligible()); !reflect.DeepEqual(got, []string{"Task 2", "Docs"}) {
		t.Errorf("Eligible() after reopening Task 2 = %v", got)
	}

	if err := dag.MarkCompleted("missing"); err == nil {
		t.Error("MarkCompleted on unknown task should fail")
	}
	if err := dag.MarkPending("missing"); err == nil {
		t.Error("MarkPending on unknown task should fail")
	}
}

func TestDAGResolve(t *testing.T) {
	dag, err := BuildDAG(parsedTasks())
	if err != nil {
		t.Fatalf("BuildDAG failed: %v", err)
	}

	tests := []struct {
		ref    string
		want   string
		wantOK bool
	}{
		{"Task 2", "Task 2", true},
		{"task 2", "Task 2", true},
		{"Task 2: Context gatherer", "Task 2", true},
		{"Task 2: something else", "Task 2", true},
		{"docs", "Docs", true},
		{"Task 9", "", false},
	}
	for _, tt := range tests {
		got, ok := dag.Resolve(tt.ref)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDAGGetReturnsCopy(t *testing.T) {
	dag := NewDAG()
	dag.AddTask(&Task{ID: "A", DependsOn: []string{"B"}})
	dag.AddTask(&Task{ID: "B"})

	task, _ := dag.Get("A")
	task.DependsOn[0] = "mutated"
	task.Status = TaskCompleted

	again, _ := dag.Get("A")
	if again.DependsOn[0] != "B" || again.Status != TaskPending {
		t.Errorf("Get returned shared state: %+v", again)
	}
}
