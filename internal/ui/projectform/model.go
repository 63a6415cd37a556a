package projectform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/theme"
)

// CreatedMsg is dispatched when a new project is submitted via the form.
type CreatedMsg struct {
	Req api.CreateTodoRequest
}

// UpdatedMsg is dispatched when an existing project is submitted via the form.
type UpdatedMsg struct {
	ID  int
	Req api.UpdateTodoRequest
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
}

// Model is the Bubble Tea model for the project create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   int
	width    int
	height   int
}

// New creates a new project form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a new project.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.fb.title = ""
	m.fb.description = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing project.
func (m *Model) StartEdit(todo model.Todo) tea.Cmd {
	m.editMode = true
	m.editID = todo.ID
	m.fb.title = todo.Title
	m.fb.description = todo.Description
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the project form.
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

// View renders the project form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Project"
	if m.editMode {
		titleText = fmt.Sprintf("Edit Project #%d", m.editID)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

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
				Title("Title").
				Placeholder("Project name").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("Title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb

	if m.editMode {
		id := m.editID
		req := api.UpdateTodoRequest{
			Title:       &fb.title,
			Description: &fb.description,
		}
		return func() tea.Msg { return UpdatedMsg{ID: id, Req: req} }
	}

	req := api.CreateTodoRequest{
		Title:       fb.title,
		Description: fb.description,
	}
	return func() tea.Msg { return CreatedMsg{Req: req} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
