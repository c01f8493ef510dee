package brief

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

func (b *Builder) render(br Brief) string {
	var out strings.Builder

	if b.header != "" {
		out.WriteString(b.header)
		out.WriteString("\n\n")
	}

	fmt.Fprintf(&out, "# %s\n\n", br.Task.Title)
	if br.Task.Description != "" {
		out.WriteString(br.Task.Description)
		out.WriteString("\n\n")
	}

	fmt.Fprintf(&out, "Priority: %s\n", br.Task.Priority)
	if br.Task.Focus != "" {
		fmt.Fprintf(&out, "Focus: %s\n", br.Task.Focus)
	}
	if len(br.DependsOn) > 0 {
		fmt.Fprintf(&out, "Depends on: %s\n", strings.Join(br.DependsOn, ", "))
	}
	if len(br.Task.Context) > 0 {
		fmt.Fprintf(&out, "Context: %s\n", strings.Join(br.Task.Context, ", "))
	}

	var problems []string
	wroteFiles := false
	for _, entry := range br.Files.List() {
		if !entry.OK() {
			problems = append(problems, entry.Message)
			continue
		}
		if !wroteFiles {
			out.WriteString("\n## Files\n")
			wroteFiles = true
		}
		content := b.truncate(entry.Content)
		fence := fenceFor(content)
		fmt.Fprintf(&out, "\n### %s\n\n%s%s\n%s", entry.Path, fence, language(entry.Path), content)
		if !strings.HasSuffix(content, "\n") {
			out.WriteString("\n")
		}
		out.WriteString(fence)
		out.WriteString("\n")
	}

	if len(problems) > 0 {
		out.WriteString("\n## Unavailable context\n\n")
		for _, p := range problems {
			fmt.Fprintf(&out, "- %s\n", p)
		}
	}

	return out.String()
}

func (b *Builder) truncate(content string) string {
	if b.maxFileBytes <= 0 || len(content) <= b.maxFileBytes {
		return content
	}
	cut := b.maxFileBytes
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return fmt.Sprintf("%s\n... (truncated, %d bytes omitted)\n", content[:cut], len(content)-cut)
}

// fenceFor returns a backtick fence longer than any backtick run in content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}

func language(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".md":
		return "markdown"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".sh":
		return "sh"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	default:
		return ""
	}
}
