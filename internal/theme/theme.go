package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps full-screen panel content (dashboard, help, forms).
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for inline error messages (sign-in failures,
// request errors surfaced in the status bar).
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// DimmedStyle de-emphasizes completed tasks in lists.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// DueDateStyle renders due date badges in lists.
var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// OverdueStyle renders the overdue marker on past-due tasks.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// StatBlockStyle renders a single dashboard statistic cell.
var StatBlockStyle = lipgloss.NewStyle().
	Padding(0, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "TODO":
		return base.Foreground(ColorBlue)
	case "IN_PROGRESS":
		return base.Foreground(ColorYellow)
	case "BLOCKED":
		return base.Foreground(ColorRed)
	case "COMPLETED":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for the given task priority.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case "URGENT":
		return base.Foreground(ColorRed)
	case "HIGH":
		return base.Foreground(ColorOrange)
	case "MEDIUM":
		return base.Foreground(ColorYellow)
	case "LOW":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityLabel returns a short badge label for the given priority.
func PriorityLabel(priority string) string {
	switch priority {
	case "URGENT":
		return "P1"
	case "HIGH":
		return "P2"
	case "MEDIUM":
		return "P3"
	case "LOW":
		return "P4"
	default:
		return "P?"
	}
}
