// Package brief turns parsed tasks and their gathered files into prompts for a
// coding agent, in dependency order.
package brief

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/taskbrief/internal/contextgather"
	"github.com/aristath/taskbrief/internal/events"
	"github.com/aristath/taskbrief/internal/scheduler"
	"github.com/aristath/taskbrief/internal/taskparse"
)

// DefaultHeader opens every prompt unless WithHeader overrides it.
const DefaultHeader = "You are working on the following task."

// Brief is one task ready to hand to an agent.
type Brief struct {
	ID        string // Scheduler ID (title key)
	Index     int    // Position in the source list
	Task      taskparse.Task
	DependsOn []string
	Files     *contextgather.Result
	Prompt    string
}

// Builder gathers context for tasks and renders their prompts.
type Builder struct {
	gatherer     *contextgather.Gatherer
	header       string
	maxFileBytes int
	extraPaths   []string
	bus          *events.EventBus
	now          func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithHeader sets the first line of every prompt.
func WithHeader(header string) Option {
	return func(b *Builder) { b.header = header }
}

// WithMaxFileBytes truncates embedded files past n bytes. 0 disables truncation.
func WithMaxFileBytes(n int) Option {
	return func(b *Builder) { b.maxFileBytes = n }
}

// WithExtraPaths adds paths gathered for every task, after its own context.
func WithExtraPaths(paths ...string) Option {
	return func(b *Builder) { b.extraPaths = append(b.extraPaths, paths...) }
}

// WithEventBus publishes a ContextGatheredEvent per task on bus.
func WithEventBus(bus *events.EventBus) Option {
	return func(b *Builder) { b.bus = bus }
}

// New creates a Builder reading files through g.
func New(g *contextgather.Gatherer, opts ...Option) *Builder {
	b := &Builder{
		gatherer: g,
		header:   DefaultHeader,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns one brief per task, ordered so every task follows the tasks it
// depends on. An unknown dependency or a cycle fails the whole build.
func (b *Builder) Build(ctx context.Context, tasks []taskparse.Task) ([]Brief, error) {
	dag, err := scheduler.BuildDAG(tasks)
	if err != nil {
		return nil, fmt.Errorf("building task graph: %w", err)
	}
	order, err := dag.Order()
	if err != nil {
		return nil, fmt.Errorf("ordering tasks: %w", err)
	}

	briefs := make([]Brief, 0, len(order))
	for _, id := range order {
		node, _ := dag.Get(id)

		paths := append(ContextPaths(node.Source.Context), b.extraPaths...)
		files, err := b.gatherer.Gather(ctx, paths)
		if err != nil {
			return nil, fmt.Errorf("gathering context for %q: %w", id, err)
		}

		if b.bus != nil {
			b.bus.Publish(events.ContextGatheredEvent{
				TaskID:    id,
				Files:     len(files.Order),
				Failed:    len(files.Failed()),
				Timestamp: b.now(),
			})
		}

		brief := Brief{
			ID:        id,
			Index:     node.Index,
			Task:      node.Source,
			DependsOn: node.DependsOn,
			Files:     files,
		}
		brief.Prompt = b.render(brief)
		briefs = append(briefs, brief)
	}
	return briefs, nil
}

// Find picks a brief by 1-based source position or by ID, key, or full title
// (case-insensitive).
func Find(briefs []Brief, ref string) (Brief, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		for _, br := range briefs {
			if br.Index == n-1 {
				return br, true
			}
		}
		return Brief{}, false
	}
	for _, br := range briefs {
		if strings.EqualFold(br.ID, ref) || strings.EqualFold(br.Task.Title, ref) ||
			strings.EqualFold(br.ID, scheduler.TaskKey(ref)) {
			return br, true
		}
	}
	return Brief{}, false
}

// ContextPaths keeps the context references that name files. Inline-code
// backticks and surrounding quotes are stripped; symbol names, prose, and
// call expressions are dropped.
func ContextPaths(refs []string) []string {
	paths := []string{}
	for _, ref := range refs {
		ref = strings.TrimSpace(strings.Trim(strings.TrimSpace(ref), "`\"'"))
		if looksLikePath(ref) {
			paths = append(paths, ref)
		}
	}
	return paths
}

func looksLikePath(ref string) bool {
	if ref == "" || strings.ContainsAny(ref, " \t()") {
		return false
	}
	if strings.ContainsAny(ref, `/\`) {
		return true
	}
	dot := strings.LastIndex(ref, ".")
	return dot >= 0 && dot < len(ref)-1 && ref != ".."
}
