package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/theme"
)

// CreatedMsg is dispatched when a new task is submitted via the form.
type CreatedMsg struct {
	Req api.CreateTaskRequest
}

// UpdatedMsg is dispatched when an existing task is submitted via the form.
type UpdatedMsg struct {
	ID  int
	Req api.UpdateTaskRequest
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      string
	priority    string
	dueDate     string
	todoID      int
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   int
	projects []model.Todo
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{status: model.StatusTodo, priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetProjects sets the available projects for the form selector.
func (m *Model) SetProjects(projects []model.Todo) {
	m.projects = projects
}

// StartCreate initializes the form for creating a new task. When
// todoID is non-nil the project selector is preset to it.
func (m *Model) StartCreate(todoID *int) tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.fb.title = ""
	m.fb.description = ""
	m.fb.status = model.StatusTodo
	m.fb.priority = model.PriorityMedium
	m.fb.dueDate = ""
	m.fb.todoID = 0
	if todoID != nil {
		m.fb.todoID = *todoID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	m.fb.title = task.Title
	m.fb.description = task.Description
	m.fb.status = task.Status
	m.fb.priority = task.Priority
	if task.DueDate != nil && task.DueDate.IsSet() {
		m.fb.dueDate = task.DueDate.Format("2006-01-02")
	} else {
		m.fb.dueDate = ""
	}
	if task.TodoID != nil {
		m.fb.todoID = *task.TodoID
	} else {
		m.fb.todoID = 0
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
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

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = fmt.Sprintf("Edit Task #%d", m.editID)
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
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[string]().
			Title("Status").
			Options(
				huh.NewOption("To do", model.StatusTodo),
				huh.NewOption("In progress", model.StatusInProgress),
				huh.NewOption("Blocked", model.StatusBlocked),
				huh.NewOption("Completed", model.StatusCompleted),
			).
			Value(&m.fb.status),
		huh.NewSelect[string]().
			Title("Priority").
			Options(
				huh.NewOption("P1 - Urgent", model.PriorityUrgent),
				huh.NewOption("P2 - High", model.PriorityHigh),
				huh.NewOption("P3 - Medium", model.PriorityMedium),
				huh.NewOption("P4 - Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
		m.projectField(),
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) projectField() huh.Field {
	opts := []huh.Option[int]{
		huh.NewOption("None (Inbox)", 0),
	}
	for _, p := range m.projects {
		opts = append(opts, huh.NewOption(p.Title, p.ID))
	}
	return huh.NewSelect[int]().
		Title("Project").
		Options(opts...).
		Value(&m.fb.todoID)
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb

	var todoID *int
	if fb.todoID != 0 {
		id := fb.todoID
		todoID = &id
	}

	var dueDate *model.Time
	if fb.dueDate != "" {
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(fb.dueDate)); err == nil {
			d := model.NewTime(t)
			dueDate = &d
		}
	}

	if m.editMode {
		id := m.editID
		req := api.UpdateTaskRequest{
			Title:       &fb.title,
			Description: &fb.description,
			Status:      &fb.status,
			Priority:    &fb.priority,
			TodoID:      todoID,
			DueDate:     dueDate,
		}
		return func() tea.Msg { return UpdatedMsg{ID: id, Req: req} }
	}

	req := api.CreateTaskRequest{
		Title:       fb.title,
		Description: fb.description,
		Status:      fb.status,
		Priority:    fb.priority,
		TodoID:      todoID,
		DueDate:     dueDate,
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

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
