// Package dashboard renders aggregate task statistics from the local
// snapshot. The view paints whatever the snapshot holds immediately;
// the background poller keeps the snapshot fresh.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/store"
	"github.com/minhng/taskdeck/internal/theme"
)

// LoadedMsg is sent when the dashboard snapshot has been read.
type LoadedMsg struct {
	Summary   *model.DashboardSummary
	FetchedAt time.Time
	Err       error
}

// Model is the dashboard view component.
type Model struct {
	store     store.Store
	summary   *model.DashboardSummary
	fetchedAt time.Time
	loadErr   error
	width     int
	height    int
}

// New creates a new dashboard model backed by the snapshot store.
func New(s store.Store, width, height int) Model {
	return Model{
		store:  s,
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the dashboard snapshot.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a tea.Cmd that reads the dashboard from the snapshot store.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		summary, fetchedAt, err := s.LoadDashboard(context.Background())
		return LoadedMsg{Summary: summary, FetchedAt: fetchedAt, Err: err}
	}
}

// Update handles messages for the dashboard view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if loaded, ok := msg.(LoadedMsg); ok {
		m.summary = loaded.Summary
		m.fetchedAt = loaded.FetchedAt
		m.loadErr = loaded.Err
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.loadErr != nil {
		return theme.ErrorStyle.Render("dashboard unavailable: " + m.loadErr.Error())
	}
	if m.summary == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No data yet.\nPress r to refresh.")
	}

	stats := m.summary.Stats

	cells := lipgloss.JoinHorizontal(lipgloss.Top,
		statCell("Tasks", fmt.Sprintf("%d", stats.TotalTasks), theme.ColorBlue),
		statCell("Done", fmt.Sprintf("%d (%.0f%%)", stats.CompletedTasks, stats.CompletionPercentage), theme.ColorGreen),
		statCell("Overdue", fmt.Sprintf("%d", stats.OverdueTasks), theme.ColorRed),
		statCell("Due today", fmt.Sprintf("%d", stats.DueToday), theme.ColorYellow),
		statCell("Projects", fmt.Sprintf("%d", stats.TotalTodos), theme.ColorMagenta),
	)

	sections := []string{
		cells,
		renderBreakdown("By status", stats.StatusBreakdown, model.Statuses),
		renderBreakdown("By priority", stats.PriorityBreakdown, model.Priorities),
	}

	if len(m.summary.Overdue) > 0 {
		sections = append(sections, renderTaskSection("Overdue", m.summary.Overdue, theme.ColorRed))
	}
	if len(m.summary.DueToday) > 0 {
		sections = append(sections, renderTaskSection("Due today", m.summary.DueToday, theme.ColorYellow))
	}
	if len(m.summary.RecentTasks) > 0 {
		sections = append(sections, renderTaskSection("Recent", m.summary.RecentTasks, theme.ColorBlue))
	}

	if !m.fetchedAt.IsZero() {
		sections = append(sections, theme.HelpStyle.Render(
			"snapshot from "+m.fetchedAt.Local().Format("15:04:05")))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func statCell(label, value string, color lipgloss.AdaptiveColor) string {
	inner := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(value),
		theme.HelpStyle.Render(label),
	)
	return theme.StatBlockStyle.Render(inner)
}

// renderBreakdown shows counts per bucket in a stable order, skipping
// buckets with no tasks.
func renderBreakdown(title string, counts map[string]int, order []string) string {
	var parts []string
	for _, bucket := range order {
		n := counts[bucket]
		if n == 0 {
			continue
		}
		parts = append(parts, theme.StatusStyle(bucket).Render(fmt.Sprintf("%s %d", bucket, n)))
	}
	if len(parts) == 0 {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		theme.HelpStyle.Render(title),
		strings.Join(parts, " "),
	)
}

func renderTaskSection(title string, tasks []model.Task, color lipgloss.AdaptiveColor) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(color).Render(title)

	lines := []string{head}
	max := 5
	for i, t := range tasks {
		if i >= max {
			lines = append(lines, theme.HelpStyle.Render(fmt.Sprintf("  ... and %d more", len(tasks)-max)))
			break
		}
		due := ""
		if t.DueDate != nil && t.DueDate.IsSet() {
			due = theme.DueDateStyle.Render(" " + t.DueDate.Format("Jan 02"))
		}
		lines = append(lines, fmt.Sprintf("  %s %s%s",
			theme.StatusStyle(t.Status).Render(t.Status), t.Title, due))
	}

	return strings.Join(lines, "\n")
}
