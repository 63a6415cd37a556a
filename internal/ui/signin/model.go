// Package signin renders the authentication form shown before any
// other view. It supports both signing in to an existing account and
// registering a new one; the submitted credentials are handled by the
// root model.
package signin

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/theme"
)

// Mode selects between the two authentication flows.
const (
	ModeSignIn   = "signin"
	ModeRegister = "register"
)

// SubmittedMsg is dispatched when the user submits the form.
type SubmittedMsg struct {
	Email    string
	Password string
	Name     string
	Register bool
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	mode     string
	email    string
	password string
	name     string
}

// Model is the Bubble Tea model for the sign-in / register form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errMsg  string
	busy    bool
	width   int
	height  int
	baseURL string
}

// New creates a new sign-in form model pointed at the given backend.
func New(baseURL string, width, height int) Model {
	m := Model{
		fb:      &formBindings{mode: ModeSignIn},
		width:   width,
		height:  height,
		baseURL: baseURL,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the initial form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Start initializes a fresh form, preserving the last entered email so
// a failed attempt does not force retyping it.
func (m *Model) Start() tea.Cmd {
	m.busy = false
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// SetError records an authentication failure and re-opens the form.
func (m *Model) SetError(msg string) tea.Cmd {
	m.errMsg = msg
	return m.Start()
}

// Update handles messages for the sign-in form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		m.errMsg = ""
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		// There is nowhere to go back to before sign-in.
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the sign-in form.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in to " + m.baseURL))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(theme.HelpStyle.Render("Signing in..."))
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(b.String())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fb := m.fb

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("Sign in", ModeSignIn),
					huh.NewOption("Register", ModeRegister),
				).
				Value(&fb.mode),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(validateRequired("Password")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Display name").
				Value(&fb.name).
				Validate(validateRequired("Name")),
		).WithHideFunc(func() bool {
			return fb.mode != ModeRegister
		}),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	fb := *m.fb
	return func() tea.Msg {
		return SubmittedMsg{
			Email:    strings.TrimSpace(fb.email),
			Password: fb.password,
			Name:     strings.TrimSpace(fb.name),
			Register: fb.mode == ModeRegister,
		}
	}
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("Email is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
