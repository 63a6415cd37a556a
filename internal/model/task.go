package model

import "time"

// Task status values as defined by the backend.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusBlocked    = "BLOCKED"
)

// Task priority values as defined by the backend.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Statuses lists all task statuses in display order.
var Statuses = []string{StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked}

// Priorities lists all task priorities in display order.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Task is a unit of work owned by a user, optionally grouped under a
// project (todo).
type Task struct {
	ID          int    `json:"id" db:"id"`
	UserID      int    `json:"user_id" db:"user_id"`
	TodoID      *int   `json:"todo_id,omitempty" db:"todo_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Status      string `json:"status" db:"status"`
	Priority    string `json:"priority" db:"priority"`
	DueDate     *Time  `json:"due_date,omitempty" db:"due_date"`
	CompletedAt *Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   Time   `json:"created_at" db:"created_at"`
	UpdatedAt   Time   `json:"updated_at" db:"updated_at"`
}

// TaskList is the paged envelope returned by the task listing endpoint.
type TaskList struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// IsCompleted reports whether the task has been completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether the task has a due date before the start of
// today and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || !t.DueDate.IsSet() || t.IsCompleted() {
		return false
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return t.DueDate.Before(startOfDay)
}

// IsDueToday reports whether the task is due within the current day and
// is not completed.
func (t Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil || !t.DueDate.IsSet() || t.IsCompleted() {
		return false
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)
	due := t.DueDate.Time
	return !due.Before(startOfDay) && due.Before(endOfDay)
}

// ValidStatus reports whether s is one of the recognized task statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the recognized priorities.
func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}
