package taskparse

import (
	"strings"
)

// Render writes a task back in the task-list dialect. Parsing the output
// yields an equal task as long as the title contains no "**", list items
// contain no commas, and the description does not start with a label bullet
// such as "- Owner: bob". Any "- Word: value" opening is read back as a label
// and dropped, recognized property name or not.
func Render(t Task) string {
	var b strings.Builder

	checkbox := "[ ]"
	if t.Completed {
		checkbox = "[x]"
	}
	b.WriteString("- " + checkbox + " **" + t.Title + ":**")
	if t.Description != "" {
		b.WriteString(" " + t.Description)
	}
	b.WriteString("\n")

	if len(t.Context) > 0 {
		writeProperty(&b, PropertyContext, strings.Join(t.Context, ", "))
	}
	if len(t.Dependencies) > 0 {
		writeProperty(&b, PropertyDependencies, strings.Join(t.Dependencies, ", "))
	}
	writeProperty(&b, PropertyPriority, t.Priority)
	if t.Focus != "" {
		writeProperty(&b, PropertyFocus, t.Focus)
	}

	return b.String()
}

// RenderAll renders tasks separated by blank lines.
func RenderAll(tasks []Task) string {
	parts := make([]string, 0, len(tasks))
	for _, t := range tasks {
		parts = append(parts, Render(t))
	}
	return strings.Join(parts, "\n")
}

func writeProperty(b *strings.Builder, name, value string) {
	b.WriteString("  - " + name + ": " + value + "\n")
}
