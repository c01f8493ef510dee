// Package tui is an interactive browser for a task list: tasks in dependency
// order, the prompt each would receive, and what went wrong gathering context.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskbrief/internal/brief"
	"github.com/aristath/taskbrief/internal/config"
	"github.com/aristath/taskbrief/internal/events"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneTaskList PaneID = iota
	PaneBrief
	PaneContext
)

// Loader produces the briefs to display. It runs off the UI goroutine.
type Loader func() ([]brief.Brief, error)

// BriefsReadyMsg carries the outcome of a Loader.
type BriefsReadyMsg struct {
	Briefs []brief.Brief
	Err    error
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	taskPane     TaskPaneModel
	contextPane  ContextPaneModel
	settingsPane SettingsPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	load         Loader
	loadErr      error
	width        int
	height       int
	quitting     bool
	showSettings bool
}

// New creates a new TUI model.
// It subscribes to all events from the event bus using SubscribeAll.
func New(eventBus *events.EventBus, cfg *config.Config, globalPath, projectPath string, load Loader) Model {
	return Model{
		taskPane:     NewTaskPaneModel(),
		contextPane:  NewContextPaneModel(),
		settingsPane: NewSettingsPaneModel(cfg, globalPath, projectPath),
		focusedPane:  PaneTaskList,
		eventSub:     eventBus.SubscribeAll(256),
		load:         load,
	}
}

// WithToggler returns a copy of m that calls t whenever a task is marked
// done or reopened.
func (m Model) WithToggler(t Toggler) Model {
	m.taskPane.SetToggler(t)
	return m
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.eventSub), loadBriefs(m.load))
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

func loadBriefs(load Loader) tea.Cmd {
	if load == nil {
		return nil
	}
	return func() tea.Msg {
		briefs, err := load()
		return BriefsReadyMsg{Briefs: briefs, Err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If settings panel is open, route all keys to it (modal behavior)
		if m.showSettings {
			var cmd tea.Cmd
			m.settingsPane, cmd = m.settingsPane.Update(msg)
			cmds = append(cmds, cmd)
			if !m.settingsPane.IsVisible() {
				m.showSettings = false
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeySettings:
			m.showSettings = true
			m.settingsPane.SetVisible(true)
			m.settingsPane.SetSize(m.width, m.height)
			cmds = append(cmds, m.settingsPane.Init())

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % 3
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + 2) % 3 // +2 is equivalent to -1 mod 3
			m.updateFocusStates()

		case KeyPane1:
			m.focusedPane = PaneTaskList
			m.updateFocusStates()

		case KeyPane2:
			m.focusedPane = PaneBrief
			m.updateFocusStates()

		case KeyPane3:
			m.focusedPane = PaneContext
			m.updateFocusStates()

		default:
			if m.focusedPane == PaneTaskList || m.focusedPane == PaneBrief {
				var cmd tea.Cmd
				m.taskPane, cmd = m.taskPane.Update(msg)
				cmds = append(cmds, cmd)
				m.contextPane.SetProgress(m.taskPane.Counts())
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.settingsPane.SetSize(msg.Width, msg.Height)

	case BriefsReadyMsg:
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.taskPane.SetBriefs(msg.Briefs)
			m.contextPane.SetProgress(m.taskPane.Counts())
		}

	case ToggleFailedMsg:
		m.contextPane.addNotice(notice{
			isError: true,
			text:    fmt.Sprintf("Could not save %s: %v", msg.TaskID, msg.Err),
		})

	case events.TasksParsedEvent, events.ContextGatheredEvent, events.ContextWarningEvent, events.ContextErrorEvent:
		var cmd tea.Cmd
		m.contextPane, cmd = m.contextPane.Update(msg)
		cmds = append(cmds, cmd)
		// Also wait for next event
		cmds = append(cmds, waitForEvent(m.eventSub))

	default:
		// Forward anything else (form internals, blink ticks) to an open settings form
		if m.showSettings {
			var cmd tea.Cmd
			m.settingsPane, cmd = m.settingsPane.Update(msg)
			cmds = append(cmds, cmd)
			if !m.settingsPane.IsVisible() {
				m.showSettings = false
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showSettings {
		return m.settingsPane.View()
	}

	if m.loadErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			StyleStatusFailed.Render(fmt.Sprintf("Could not prepare briefs: %v", m.loadErr)),
			HelpView(),
		)
	}

	mainContent := lipgloss.JoinVertical(lipgloss.Left, m.taskPane.View(), m.contextPane.View())
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, HelpView())
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	availableHeight := m.height - 1 // reserve 1 line for help bar
	topHeight := (availableHeight * 70) / 100

	m.taskPane.SetSize(m.width, topHeight)
	m.contextPane.SetSize(m.width, availableHeight-topHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.taskPane.SetFocused(m.focusedPane == PaneTaskList, m.focusedPane == PaneBrief)
	m.contextPane.SetFocused(m.focusedPane == PaneContext)
}
