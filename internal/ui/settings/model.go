// Package settings renders the configuration form. Saved values are
// written back to the YAML config file; changing the server URL takes
// effect on the next start.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/theme"
)

// SavedMsg is dispatched when the user saves the settings form.
type SavedMsg struct {
	Config model.AppConfig
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL       string
	healthOnStart bool
	intervalSec   string
	syncPageSize  string
	theme         string
	listPageSize  string
}

// Model is the Bubble Tea model for the settings form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	config model.AppConfig
	width  int
	height int
}

// New creates a new settings form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form from the current configuration.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.config = cfg
	m.fb.baseURL = cfg.Server.BaseURL
	m.fb.healthOnStart = cfg.Server.HealthOnStart
	m.fb.intervalSec = strconv.Itoa(cfg.Sync.IntervalSec)
	m.fb.syncPageSize = strconv.Itoa(cfg.Sync.PageSize)
	m.fb.theme = cfg.Display.Theme
	m.fb.listPageSize = strconv.Itoa(cfg.Display.PageSize)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Settings") + "\n" +
		theme.HelpStyle.Render("Server URL changes apply after restart.") + "\n\n" +
		m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Placeholder("http://localhost:8000").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewConfirm().
				Title("Health check on start").
				Value(&m.fb.healthOnStart),
			huh.NewInput().
				Title("Sync interval (seconds)").
				Value(&m.fb.intervalSec).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Sync page size").
				Value(&m.fb.syncPageSize).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Default", "default"),
					huh.NewOption("Plain (no colors)", "plain"),
				).
				Value(&m.fb.theme),
			huh.NewInput().
				Title("List page size").
				Value(&m.fb.listPageSize).
				Validate(validatePositiveInt),
		),
	).WithWidth(m.formWidth())
}

func (m Model) handleSubmit() tea.Cmd {
	cfg := m.config
	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	cfg.Server.HealthOnStart = m.fb.healthOnStart
	cfg.Sync.IntervalSec = mustAtoi(m.fb.intervalSec, cfg.Sync.IntervalSec)
	cfg.Sync.PageSize = mustAtoi(m.fb.syncPageSize, cfg.Sync.PageSize)
	cfg.Display.Theme = m.fb.theme
	cfg.Display.PageSize = mustAtoi(m.fb.listPageSize, cfg.Display.PageSize)

	return func() tea.Msg { return SavedMsg{Config: cfg} }
}

// mustAtoi parses s, keeping the previous value when the input is not a
// number. The form validators make that unreachable in practice.
func mustAtoi(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Server URL is required")
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}
