// Package projectlist renders the project (todo list) overview.
package projectlist

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/keys"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/store"
	"github.com/minhng/taskdeck/internal/theme"
)

// ProjectsLoadedMsg is sent when the project list has been loaded.
type ProjectsLoadedMsg struct {
	Todos []model.Todo

	// Offline is set when the list came from the local snapshot.
	Offline bool
	Err     error
}

// OpenProjectMsg is sent when the user opens a project to see its tasks.
type OpenProjectMsg struct {
	Todo model.Todo
}

// projectItem wraps a model.Todo for the bubbles list.
type projectItem struct {
	todo model.Todo
}

func (i projectItem) FilterValue() string { return i.todo.Title }

// itemDelegate renders a single project row.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(projectItem)
	if !ok {
		return
	}

	title := lipgloss.NewStyle().Bold(true).Render(pi.todo.Title)
	desc := ""
	if pi.todo.Description != "" {
		desc = theme.HelpStyle.Render("  " + truncate(pi.todo.Description, 60))
	}
	line := fmt.Sprintf("▸ #%d %s%s", pi.todo.ID, title, desc)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// Model is the project list view component.
type Model struct {
	list    list.Model
	client  *api.Client
	store   store.Store
	keys    *keys.KeyMap
	offline bool
	width   int
	height  int
}

// New creates a new project list model.
func New(client *api.Client, s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Projects"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		client: client,
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the projects.
func (m Model) Init() tea.Cmd {
	return m.LoadProjects()
}

// Update handles messages for the project list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProjectsLoadedMsg:
		m.offline = msg.Offline
		items := make([]list.Item, len(msg.Todos))
		for i, todo := range msg.Todos {
			items[i] = projectItem{todo: todo}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Select) {
			item, ok := m.list.SelectedItem().(projectItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return OpenProjectMsg{Todo: item.todo}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SelectedProject returns the currently highlighted project, if any.
func (m Model) SelectedProject() (model.Todo, bool) {
	item, ok := m.list.SelectedItem().(projectItem)
	if !ok {
		return model.Todo{}, false
	}
	return item.todo, true
}

// Offline reports whether the last load fell back to the snapshot.
func (m Model) Offline() bool {
	return m.offline
}

// View renders the project list view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No projects yet.\n\nPress n to create one.")
	}
	return m.list.View()
}

// LoadProjects returns a tea.Cmd that fetches the project list from the
// backend, falling back to the snapshot store on failure.
func (m Model) LoadProjects() tea.Cmd {
	client := m.client
	s := m.store

	return func() tea.Msg {
		ctx := context.Background()

		page, err := client.ListTodos(ctx, 0, 100)
		if err == nil {
			return ProjectsLoadedMsg{Todos: page.Todos}
		}

		todos, storeErr := s.GetTodos(ctx, 0, 0)
		if storeErr != nil {
			return ProjectsLoadedMsg{Err: err, Offline: true}
		}
		return ProjectsLoadedMsg{Todos: todos, Offline: true, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
