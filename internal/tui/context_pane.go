package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskbrief/internal/events"
)

const maxNotices = 50

type notice struct {
	isError bool
	text    string
}

// ContextPaneModel summarizes gathered context and lists gatherer notices.
type ContextPaneModel struct {
	files    int
	failed   int
	gathered int // Tasks whose context has been read
	skipped  int // Headers dropped while parsing
	done     int
	total    int
	notices  []notice
	width    int
	height   int
	focused  bool
}

// NewContextPaneModel creates a new context pane model.
func NewContextPaneModel() ContextPaneModel {
	return ContextPaneModel{}
}

// Update handles messages for the context pane.
func (m ContextPaneModel) Update(msg tea.Msg) (ContextPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case events.TasksParsedEvent:
		m.skipped = msg.Skipped

	case events.ContextGatheredEvent:
		m.gathered++
		m.files += msg.Files
		m.failed += msg.Failed

	case events.ContextWarningEvent:
		m.addNotice(notice{text: msg.Message})

	case events.ContextErrorEvent:
		m.addNotice(notice{isError: true, text: msg.Message})
	}

	return m, nil
}

func (m *ContextPaneModel) addNotice(n notice) {
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// SetProgress updates the completed task counts shown in the bar.
func (m *ContextPaneModel) SetProgress(done, total int) {
	m.done = done
	m.total = total
}

// View renders the context pane.
func (m ContextPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Context")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Tasks:   %d gathered\n", m.gathered))
	b.WriteString(fmt.Sprintf("Files:   %s\n", StyleStatusComplete.Render(fmt.Sprintf("%d", m.files-m.failed))))
	b.WriteString(fmt.Sprintf("Missing: %s\n", StyleStatusFailed.Render(fmt.Sprintf("%d", m.failed))))
	if m.skipped > 0 {
		b.WriteString(fmt.Sprintf("Skipped: %s\n", StyleStatusReady.Render(fmt.Sprintf("%d headers", m.skipped))))
	}

	b.WriteString("\n")

	// Progress bar
	if m.total > 0 {
		barWidth := min(m.width-4, 40)
		doneWidth := (m.done * barWidth) / m.total
		bar := StyleStatusComplete.Render(strings.Repeat("=", max(0, doneWidth)))
		bar += StyleStatusPending.Render(strings.Repeat(".", max(0, barWidth-doneWidth)))
		b.WriteString(fmt.Sprintf("[%s]  %d/%d done\n\n", bar, m.done, m.total))
	}

	// Newest notices that fit
	room := max(0, m.height-len(strings.Split(b.String(), "\n"))-2)
	start := max(0, len(m.notices)-room)
	for _, n := range m.notices[start:] {
		if n.isError {
			b.WriteString(StyleStatusFailed.Render("✗ " + n.text))
		} else {
			b.WriteString(StyleStatusReady.Render("! " + n.text))
		}
		b.WriteString("\n")
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *ContextPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ContextPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
