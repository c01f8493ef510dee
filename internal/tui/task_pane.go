package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskbrief/internal/brief"
	"github.com/aristath/taskbrief/internal/scheduler"
)

const listWidth = 28

// TaskState is the display state of one task.
type TaskState string

const (
	StateDone    TaskState = "done"
	StateReady   TaskState = "ready"   // Every dependency is done
	StateBlocked TaskState = "blocked" // Waiting on an unfinished dependency
)

// Toggler is called after a task is marked done (done == true) or reopened.
type Toggler func(br brief.Brief, done bool) error

// ToggleFailedMsg reports that a Toggler rejected a change.
type ToggleFailedMsg struct {
	TaskID string
	Err    error
}

// TaskPaneModel shows the ordered task list beside the selected task's prompt.
type TaskPaneModel struct {
	briefs      []brief.Brief
	dag         *scheduler.DAG
	onToggle    Toggler
	selectedIdx int
	viewport    viewport.Model
	width       int
	height      int
	listFocused bool
	viewFocused bool
}

// NewTaskPaneModel creates a new task pane model.
func NewTaskPaneModel() TaskPaneModel {
	return TaskPaneModel{
		dag:      scheduler.NewDAG(),
		viewport: viewport.New(0, 0),
	}
}

// SetBriefs replaces the displayed tasks. Completion starts from each
// task's checkbox.
func (m *TaskPaneModel) SetBriefs(briefs []brief.Brief) {
	m.briefs = briefs
	m.dag = scheduler.NewDAG()
	for _, br := range briefs {
		status := scheduler.TaskPending
		if br.Task.Completed {
			status = scheduler.TaskCompleted
		}
		// Brief IDs come from a DAG already, so they are unique.
		_ = m.dag.AddTask(&scheduler.Task{
			ID:        br.ID,
			Index:     br.Index,
			DependsOn: br.DependsOn,
			Status:    status,
			Source:    br.Task,
		})
	}
	m.selectedIdx = 0
	m.updateViewportContent()
}

// SetToggler registers the callback run when a task's completion changes.
func (m *TaskPaneModel) SetToggler(t Toggler) {
	m.onToggle = t
}

// Update handles messages for the task pane.
func (m TaskPaneModel) Update(msg tea.Msg) (TaskPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if m.viewFocused {
			m.viewport, cmd = m.viewport.Update(msg)
			break
		}
		if !m.listFocused {
			break
		}

		switch msg.String() {
		case KeyJ, KeyDown:
			if m.selectedIdx < len(m.briefs)-1 {
				m.selectedIdx++
				m.updateViewportContent()
			}
		case KeyK, KeyUp:
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.updateViewportContent()
			}
		case KeyToggle:
			cmd = m.toggleSelected()
		default:
			// Delegate other keys to viewport for scrolling
			m.viewport, cmd = m.viewport.Update(msg)
		}
	}

	return m, cmd
}

// View renders the task pane.
func (m TaskPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	viewportWidth := m.width - listWidth - 4 // account for borders and padding

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskList(listWidth),
		lipgloss.NewStyle().
			Width(viewportWidth).
			Height(m.height-2).
			Render(m.viewport.View()),
	)

	style := StyleUnfocusedBorder
	if m.listFocused || m.viewFocused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

func (m TaskPaneModel) renderTaskList(width int) string {
	var b strings.Builder

	title := StyleTitle.Render("Tasks")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", min(width, lipgloss.Width(title))))
	b.WriteString("\n\n")

	if len(m.briefs) == 0 {
		b.WriteString(StyleStatusPending.Render("Loading..."))
	} else {
		for i, br := range m.briefs {
			name := br.ID
			if len(name) > width-6 {
				name = name[:width-9] + "..."
			}

			line := fmt.Sprintf("%s %s", StatusIcon(m.State(br.ID)), name)
			if i == m.selectedIdx {
				line = StyleSelected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.height - 2).
		Render(b.String())
}

// toggleSelected flips the selected task between done and pending. The
// Toggler, if any, runs as a command so a slow store never blocks the UI.
func (m *TaskPaneModel) toggleSelected() tea.Cmd {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.briefs) {
		return nil
	}
	br := m.briefs[m.selectedIdx]

	done := m.State(br.ID) != StateDone
	var err error
	if done {
		err = m.dag.MarkCompleted(br.ID)
	} else {
		err = m.dag.MarkPending(br.ID)
	}
	if err != nil {
		return func() tea.Msg { return ToggleFailedMsg{TaskID: br.ID, Err: err} }
	}

	if m.onToggle == nil {
		return nil
	}
	onToggle := m.onToggle
	return func() tea.Msg {
		if err := onToggle(br, done); err != nil {
			return ToggleFailedMsg{TaskID: br.ID, Err: err}
		}
		return nil
	}
}

// State reports whether a task is done, ready, or blocked.
func (m TaskPaneModel) State(id string) TaskState {
	task, ok := m.dag.Get(id)
	if !ok {
		return StateBlocked
	}
	if task.Status == scheduler.TaskCompleted {
		return StateDone
	}
	for _, eligible := range m.dag.Eligible() {
		if eligible.ID == id {
			return StateReady
		}
	}
	return StateBlocked
}

// Counts returns how many tasks are done and how many exist.
func (m TaskPaneModel) Counts() (done, total int) {
	tasks := m.dag.Tasks()
	for _, task := range tasks {
		if task.Status == scheduler.TaskCompleted {
			done++
		}
	}
	return done, len(tasks)
}

// StatusIcon returns a styled status indicator.
func StatusIcon(state TaskState) string {
	switch state {
	case StateDone:
		return StyleStatusComplete.Render("✓")
	case StateReady:
		return StyleStatusReady.Render("●")
	default:
		return StyleStatusPending.Render("○")
	}
}

// SelectedID returns the ID of the selected task, or "" when there are none.
func (m TaskPaneModel) SelectedID() string {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.briefs) {
		return m.briefs[m.selectedIdx].ID
	}
	return ""
}

func (m *TaskPaneModel) updateViewportContent() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.briefs) {
		m.viewport.SetContent("No tasks.")
		return
	}
	m.viewport.SetContent(m.briefs[m.selectedIdx].Prompt)
	m.viewport.GotoTop()
}

func (m *TaskPaneModel) resizeViewport() {
	viewportWidth := m.width - listWidth - 4
	viewportHeight := m.height - 4 // account for borders

	m.viewport.Width = max(viewportWidth, 10)
	m.viewport.Height = max(viewportHeight, 5)
}

// SetSize updates the pane dimensions.
func (m *TaskPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates which half of the pane receives keys.
func (m *TaskPaneModel) SetFocused(list, view bool) {
	m.listFocused = list
	m.viewFocused = view
}
