package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskbrief/internal/config"
)

// SettingsPaneModel manages the settings form overlay.
type SettingsPaneModel struct {
	form        *huh.Form
	config      *config.Config
	globalPath  string
	projectPath string
	width       int
	height      int
	visible     bool
	saved       bool
	err         error

	// Form field bindings (strings for Huh)
	saveTarget   string
	tasksFile    string
	storePath    string
	baseDir      string
	concurrency  string
	header       string
	maxFileBytes string
}

// NewSettingsPaneModel creates a new settings pane.
func NewSettingsPaneModel(cfg *config.Config, globalPath, projectPath string) SettingsPaneModel {
	m := SettingsPaneModel{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
	}
	m.loadFields()
	m.buildForm()
	return m
}

// loadFields copies config values into the form bindings.
func (m *SettingsPaneModel) loadFields() {
	m.saveTarget = "project"
	m.tasksFile = m.config.TasksFile
	m.storePath = m.config.StorePath
	m.baseDir = m.config.Gather.BaseDir
	m.concurrency = strconv.Itoa(m.config.Gather.Concurrency)
	m.header = m.config.Prompt.Header
	m.maxFileBytes = strconv.Itoa(m.config.Prompt.MaxFileBytes)
}

func validateCount(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number, 0 or more")
	}
	return nil
}

// buildForm constructs the Huh form with all settings fields.
func (m *SettingsPaneModel) buildForm() {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption("Project (.taskbrief/config.json)", "project"),
					huh.NewOption("Global (~/.taskbrief/config.json)", "global"),
				).
				Value(&m.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewInput().
				Key("tasksFile").
				Title("Task List").
				Value(&m.tasksFile).
				Placeholder("TASKS.md"),

			huh.NewInput().
				Key("storePath").
				Title("Store Path").
				Value(&m.storePath).
				Placeholder(".taskbrief/taskbrief.db"),

			huh.NewInput().
				Key("baseDir").
				Title("Context Base Directory").
				Description("Empty resolves relative paths against the working directory").
				Value(&m.baseDir),

			huh.NewInput().
				Key("concurrency").
				Title("Parallel Reads").
				Value(&m.concurrency).
				Validate(validateCount),
		).Title("Files"),

		huh.NewGroup(
			huh.NewInput().
				Key("header").
				Title("Prompt Header").
				Value(&m.header),

			huh.NewInput().
				Key("maxFileBytes").
				Title("Max Embedded File Bytes").
				Description("0 embeds files whole").
				Value(&m.maxFileBytes).
				Validate(validateCount),
		).Title("Prompt"),
	)
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		// Cancel without saving
		m.visible = false
		m.saved = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.applyFormToConfig()

		targetPath := m.globalPath
		if m.saveTarget == "project" {
			targetPath = m.projectPath
		}

		if err := config.Save(m.config, targetPath); err != nil {
			m.err = err
			m.saved = false
		} else {
			m.saved = true
			m.err = nil
			m.visible = false
		}
	}

	return m, cmd
}

// applyFormToConfig copies form field values back to the config struct.
// Numeric fields were validated by the form.
func (m *SettingsPaneModel) applyFormToConfig() {
	m.config.TasksFile = m.tasksFile
	m.config.StorePath = m.storePath
	m.config.Gather.BaseDir = m.baseDir
	if n, err := strconv.Atoi(m.concurrency); err == nil {
		m.config.Gather.Concurrency = n
	}
	m.config.Prompt.Header = m.header
	if n, err := strconv.Atoi(m.maxFileBytes); err == nil {
		m.config.Prompt.MaxFileBytes = n
	}
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	var content string
	if m.err != nil {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Render(fmt.Sprintf("✗ Error saving: %v", m.err))
	} else {
		content = m.form.View()
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render("⚙ Settings")

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(content))
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane.
func (m *SettingsPaneModel) SetVisible(v bool) {
	m.visible = v
	m.saved = false
	m.err = nil

	// Rebuild form to reset state
	if v {
		m.loadFields()
		m.buildForm()
	}
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}

// Saved reports whether the last form submission was written to disk.
func (m SettingsPaneModel) Saved() bool {
	return m.saved
}
