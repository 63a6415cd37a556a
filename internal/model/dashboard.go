package model

// DashboardStats holds the aggregate counts computed by the backend.
// Values are reported verbatim; the client does not re-derive them.
type DashboardStats struct {
	TotalTasks           int            `json:"total_tasks"`
	CompletedTasks       int            `json:"completed_tasks"`
	CompletionPercentage float64        `json:"completion_percentage"`
	StatusBreakdown      map[string]int `json:"status_breakdown"`
	PriorityBreakdown    map[string]int `json:"priority_breakdown"`
	OverdueTasks         int            `json:"overdue_tasks"`
	DueToday             int            `json:"due_today"`
	TotalTodos           int            `json:"total_todos"`
}

// DashboardSummary is the full dashboard payload: stats plus the task
// lists the dashboard page renders.
type DashboardSummary struct {
	Stats       DashboardStats `json:"stats"`
	RecentTasks []Task         `json:"recent_tasks"`
	DueToday    []Task         `json:"due_today"`
	Overdue     []Task         `json:"overdue"`
}
