// Package tasklist renders the paginated task list. Pages and filters
// are resolved server-side; when the backend is unreachable the view
// falls back to the local snapshot and flags itself offline.
package tasklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/keys"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/store"
	"github.com/minhng/taskdeck/internal/theme"
)

// TasksLoadedMsg is sent when a page of tasks has been loaded.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Total int

	// Offline is set when the page came from the local snapshot
	// because the backend request failed.
	Offline bool
	Err     error
}

// SelectedTaskMsg is sent when the user opens a task for editing.
type SelectedTaskMsg struct {
	Task model.Task
}

// statusCycle is the order the status filter steps through; the empty
// string means no filter.
var statusCycle = append([]string{""}, model.Statuses...)

// priorityCycle is the order the priority filter steps through.
var priorityCycle = append([]string{""}, model.Priorities...)

// Model is the task list view component.
type Model struct {
	list        list.Model
	client      *api.Client
	store       store.Store
	keys        *keys.KeyMap
	pageSize    int
	skip        int
	total       int
	statusIdx   int
	priorityIdx int
	query       string
	todoID      *int
	offline     bool
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model.
func New(client *api.Client, s store.Store, k *keys.KeyMap, pageSize, width, height int) Model {
	if pageSize <= 0 {
		pageSize = 25
	}

	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		client:      client,
		store:       s,
		keys:        k,
		pageSize:    pageSize,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the first page of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		m.total = msg.Total
		m.offline = msg.Offline
		items := make([]list.Item, len(msg.Tasks))
		for i, task := range msg.Tasks {
			items[i] = TaskItem{Task: task}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = strings.TrimSpace(m.searchInput.Value())
		m.skip = 0
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		m.skip = 0
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{Task: item.Task}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleStatus):
		m.statusIdx = (m.statusIdx + 1) % len(statusCycle)
		m.skip = 0
		return m, m.LoadTasks()

	case key.Matches(msg, m.keys.CyclePriority):
		m.priorityIdx = (m.priorityIdx + 1) % len(priorityCycle)
		m.skip = 0
		return m, m.LoadTasks()

	case key.Matches(msg, m.keys.NextPage):
		if m.skip+m.pageSize < m.total {
			m.skip += m.pageSize
			return m, m.LoadTasks()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.skip > 0 {
			m.skip -= m.pageSize
			if m.skip < 0 {
				m.skip = 0
			}
			return m, m.LoadTasks()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search box has focus, so the root
// model leaves all keys to it.
func (m Model) Searching() bool {
	return m.searchMode
}

// SelectedTask returns the currently highlighted task, if any.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// SetProjectFilter restricts the list to tasks of a single project;
// nil clears the restriction.
func (m *Model) SetProjectFilter(todoID *int) tea.Cmd {
	m.todoID = todoID
	m.skip = 0
	return m.LoadTasks()
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	var parts []string
	if s := statusCycle[m.statusIdx]; s != "" {
		parts = append(parts, "status="+s)
	}
	if p := priorityCycle[m.priorityIdx]; p != "" {
		parts = append(parts, "priority="+p)
	}
	if m.query != "" {
		parts = append(parts, "search="+m.query)
	}
	if m.todoID != nil {
		parts = append(parts, fmt.Sprintf("project=#%d", *m.todoID))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ")
}

// Offline reports whether the last load fell back to the snapshot.
func (m Model) Offline() bool {
	return m.offline
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	view := m.list.View()
	if m.total > m.pageSize {
		page := m.skip/m.pageSize + 1
		pages := (m.total + m.pageSize - 1) / m.pageSize
		pager := theme.HelpStyle.Render(fmt.Sprintf("page %d/%d (%d tasks)", page, pages, m.total))
		view = lipgloss.JoinVertical(lipgloss.Left, view, pager)
	}
	return view
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	hasFilters := m.FilterSummary() != ""

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render("No matching tasks.\nTry adjusting your filters.")
	}

	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// LoadTasks returns a tea.Cmd that fetches the current page from the
// backend, falling back to the snapshot store on failure.
func (m Model) LoadTasks() tea.Cmd {
	client := m.client
	s := m.store
	skip, limit := m.skip, m.pageSize
	filter := api.TaskFilter{
		TodoID:   m.todoID,
		Status:   statusCycle[m.statusIdx],
		Priority: priorityCycle[m.priorityIdx],
		Search:   m.query,
	}

	return func() tea.Msg {
		ctx := context.Background()

		page, err := client.ListTasks(ctx, skip, limit, filter)
		if err == nil {
			return TasksLoadedMsg{Tasks: page.Tasks, Total: page.Total}
		}

		tasks, storeErr := s.GetTasks(ctx, store.TaskFilter{
			TodoID:   filter.TodoID,
			Status:   filter.Status,
			Priority: filter.Priority,
			Query:    filter.Search,
			Limit:    limit,
			Offset:   skip,
		})
		if storeErr != nil {
			return TasksLoadedMsg{Err: err, Offline: true}
		}
		return TasksLoadedMsg{Tasks: tasks, Total: skip + len(tasks), Offline: true, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
