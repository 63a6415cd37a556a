// Package store keeps a local snapshot of the backend's data so the UI
// paints instantly on startup and remains readable offline. It is
// write-behind only: user-triggered API calls are never answered from
// the snapshot.
package store

import (
	"context"
	"time"

	"github.com/minhng/taskdeck/internal/model"
)

// TaskFilter controls filtering and pagination for snapshot task reads.
type TaskFilter struct {
	TodoID   *int
	Status   string
	Priority string
	Query    string
	Limit    int
	Offset   int
}

// Pending mutation kinds recorded in the journal.
const (
	PendingCreateTask = "create_task"
	PendingUpdateTask = "update_task"
	PendingDeleteTask = "delete_task"
	PendingCreateTodo = "create_todo"
	PendingUpdateTodo = "update_todo"
	PendingDeleteTodo = "delete_todo"
)

// PendingMutation is a tentative local change awaiting backend
// confirmation. The UI shows it as pending until Resolve removes it (on
// success) or Rollback undoes it (on failure).
type PendingMutation struct {
	// ID is a locally generated UUID identifying the journal entry.
	ID string `db:"id"`

	// Kind is one of the Pending* constants.
	Kind string `db:"kind"`

	// EntityID is the backend ID of the affected row, when known.
	// Creates have none until the backend responds.
	EntityID *int `db:"entity_id"`

	// Payload is the JSON request body sent to the backend, kept for
	// display and rollback.
	Payload string `db:"payload"`

	CreatedAt time.Time `db:"created_at"`
}

// Store is the persistence interface for the local snapshot.
type Store interface {
	// Snapshot writes replace whole result sets from a sync cycle.
	ReplaceTasks(ctx context.Context, tasks []model.Task) error
	ReplaceTodos(ctx context.Context, todos []model.Todo) error
	SaveDashboard(ctx context.Context, summary model.DashboardSummary) error

	// Snapshot reads back the last stored state.
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id int) (*model.Task, error)
	GetTodos(ctx context.Context, limit, offset int) ([]model.Todo, error)
	GetTodoByID(ctx context.Context, id int) (*model.Todo, error)
	LoadDashboard(ctx context.Context) (*model.DashboardSummary, time.Time, error)

	// Pending mutation journal.
	AddPending(ctx context.Context, m PendingMutation) error
	GetPending(ctx context.Context) ([]PendingMutation, error)
	ResolvePending(ctx context.Context, id string) error

	Close() error
}
