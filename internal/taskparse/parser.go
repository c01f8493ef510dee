// Package taskparse extracts structured tasks from a markdown task list.
//
// The recognized dialect is a top-level checkbox bullet with a bold title
// ending in a colon, followed by free-text description lines and typed
// property bullets:
//
//	- [ ] **Parser:** Build the markdown parser.
//	  It must tolerate multi-line descriptions.
//	  - Context: internal/taskparse/parser.go, README.md
//	  - Dependencies: Setup
//	  - Priority: High
//	  - Focus: edge cases
//
// Parsing never fails. Text that does not match the dialect is not emitted.
package taskparse

import (
	"fmt"
	"regexp"
	"strings"
)

// Recognized property names. Matching is case-sensitive.
const (
	PropertyContext      = "Context"
	PropertyDependencies = "Dependencies"
	PropertyPriority     = "Priority"
	PropertyFocus        = "Focus"

	// labelDescription is not a property: its value is folded into the
	// description when it appears before the first property line.
	labelDescription = "Description"
)

var (
	// headerPattern matches a top-level checkbox bullet followed by a bold segment.
	// Group 1 is the checkbox state, group 2 the bold text, group 3 the remainder.
	headerPattern = regexp.MustCompile(`^[-*+][ \t]+\[([ xX])\][ \t]+\*\*(.*?)\*\*(.*)$`)

	propertyPattern = regexp.MustCompile(`^\s*[-*+]\s*(Context|Dependencies|Priority|Focus):\s*(.*)$`)

	// labelPattern matches any bullet shaped like a property, recognized or not.
	labelPattern = regexp.MustCompile(`^\s*[-*+]\s*([A-Za-z][A-Za-z0-9_-]*):\s*(.*)$`)

	checkboxPattern = regexp.MustCompile(`^\s*[-*+][ \t]+\[[ xX]\]`)
)

// Parse extracts tasks from markdown in source order.
func Parse(markdown string) []Task {
	return ParseDocument(markdown).Tasks
}

// ParseDocument extracts tasks from markdown and reports header lines that
// were skipped because their title was empty.
func ParseDocument(markdown string) Result {
	lines := splitLines(markdown)
	result := Result{Tasks: []Task{}}

	var current *builder
	flush := func() {
		if current != nil {
			result.Tasks = append(result.Tasks, current.build())
			current = nil
		}
	}

	for i, line := range lines {
		if h, ok := matchHeader(line); ok {
			flush()
			if h.title == "" {
				result.Skipped = append(result.Skipped, Diagnostic{
					Line:   i + 1,
					Reason: "task header has an empty title",
				})
				// Body lines up to the next header belong to the skipped task.
				continue
			}
			current = &builder{task: newTask(h.title, h.completed)}
			current.consume(h.rest)
			continue
		}
		if current != nil {
			current.consume(line)
		}
	}
	flush()

	return result
}

// LooksLikeTaskList reports whether markdown contains any checkbox bullet.
// It separates "no tasks written yet" from "not a task list at all".
func LooksLikeTaskList(markdown string) bool {
	for _, line := range splitLines(markdown) {
		if checkboxPattern.MatchString(line) {
			return true
		}
	}
	return false
}

type header struct {
	title     string
	completed bool
	rest      string
}

// matchHeader recognizes a task header. The title must end in a colon,
// either inside the bold segment (**Title:**) or right after it (**Title**:).
func matchHeader(line string) (header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return header{}, false
	}
	bold, rest := m[2], m[3]
	switch {
	case strings.HasSuffix(bold, ":"):
		bold = strings.TrimSuffix(bold, ":")
	case strings.HasPrefix(rest, ":"):
		rest = strings.TrimPrefix(rest, ":")
	default:
		return header{}, false
	}
	return header{
		title:     strings.TrimSpace(bold),
		completed: m[1] != " ",
		rest:      strings.TrimSpace(rest),
	}, true
}

// builder accumulates one task body.
type builder struct {
	task    Task
	desc    []string
	inProps bool // a recognized property line has been seen
}

func (b *builder) consume(line string) {
	if m := propertyPattern.FindStringSubmatch(line); m != nil {
		b.inProps = true
		b.task.apply(m[1], strings.TrimSpace(m[2]))
		return
	}
	if b.inProps {
		return
	}
	if m := labelPattern.FindStringSubmatch(line); m != nil {
		if m[1] == labelDescription {
			b.desc = append(b.desc, m[2])
		}
		return
	}
	b.desc = append(b.desc, strings.TrimSpace(line))
}

func (b *builder) build() Task {
	t := b.task
	t.Description = collapse(strings.Join(b.desc, " "))
	return t
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

// splitList splits a comma-separated value, trimming and dropping empty items.
func splitList(value string) []string {
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Reason)
}
