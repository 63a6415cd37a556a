package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/store"
	"github.com/minhng/taskdeck/tests/testutil"
)

func sampleTask(id int, title, status string) model.Task {
	now := model.NewTime(time.Now().UTC().Truncate(time.Second))
	return model.Task{
		ID:        id,
		UserID:    1,
		Title:     title,
		Status:    status,
		Priority:  model.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestReplaceAndGetTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	todoID := 3
	due := model.NewTime(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	withDue := sampleTask(1, "write report", model.StatusTodo)
	withDue.TodoID = &todoID
	withDue.DueDate = &due

	require.NoError(t, s.ReplaceTasks(ctx, []model.Task{
		withDue,
		sampleTask(2, "review PR", model.StatusInProgress),
	}))

	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	got, err := s.GetTaskByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "write report", got.Title)
	require.NotNil(t, got.TodoID)
	assert.Equal(t, 3, *got.TodoID)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due.Time))

	// A later replace drops rows absent from the new snapshot.
	require.NoError(t, s.ReplaceTasks(ctx, []model.Task{sampleTask(2, "review PR", model.StatusCompleted)}))

	gone, err := s.GetTaskByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGetTasksFiltering(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	urgent := sampleTask(1, "hotfix deploy", model.StatusInProgress)
	urgent.Priority = model.PriorityUrgent

	require.NoError(t, s.ReplaceTasks(ctx, []model.Task{
		urgent,
		sampleTask(2, "write docs", model.StatusTodo),
		sampleTask(3, "deploy staging", model.StatusCompleted),
	}))

	byStatus, err := s.GetTasks(ctx, store.TaskFilter{Status: model.StatusTodo})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "write docs", byStatus[0].Title)

	byPriority, err := s.GetTasks(ctx, store.TaskFilter{Priority: model.PriorityUrgent})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, 1, byPriority[0].ID)

	bySearch, err := s.GetTasks(ctx, store.TaskFilter{Query: "deploy"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	limited, err := s.GetTasks(ctx, store.TaskFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReplaceAndGetTodos(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := model.NewTime(time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.ReplaceTodos(ctx, []model.Todo{
		{ID: 1, UserID: 1, Title: "Launch", CreatedAt: now, UpdatedAt: now},
		{ID: 2, UserID: 1, Title: "Cleanup", Description: "tech debt", CreatedAt: now, UpdatedAt: now},
	}))

	todos, err := s.GetTodos(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	got, err := s.GetTodoByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tech debt", got.Description)

	missing, err := s.GetTodoByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDashboardRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Empty store: no snapshot yet, no error.
	summary, fetchedAt, err := s.LoadDashboard(ctx)
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.True(t, fetchedAt.IsZero())

	in := model.DashboardSummary{
		Stats: model.DashboardStats{
			TotalTasks:           12,
			CompletedTasks:       5,
			CompletionPercentage: 41.67,
			StatusBreakdown:      map[string]int{"TODO": 7, "COMPLETED": 5},
			PriorityBreakdown:    map[string]int{"MEDIUM": 12},
			TotalTodos:           2,
		},
	}
	require.NoError(t, s.SaveDashboard(ctx, in))

	out, fetchedAt, err := s.LoadDashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 12, out.Stats.TotalTasks)
	assert.Equal(t, 7, out.Stats.StatusBreakdown["TODO"])
	assert.False(t, fetchedAt.IsZero())

	// Saving again overwrites the single snapshot row.
	in.Stats.TotalTasks = 13
	require.NoError(t, s.SaveDashboard(ctx, in))
	out, _, err = s.LoadDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, out.Stats.TotalTasks)
}

func TestPendingMutationJournal(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id := uuid.New().String()
	require.NoError(t, s.AddPending(ctx, store.PendingMutation{
		ID:      id,
		Kind:    store.PendingCreateTask,
		Payload: `{"title": "A"}`,
	}))

	entityID := 42
	require.NoError(t, s.AddPending(ctx, store.PendingMutation{
		ID:        uuid.New().String(),
		Kind:      store.PendingDeleteTask,
		EntityID:  &entityID,
		Payload:   `{}`,
		CreatedAt: time.Now().UTC().Add(time.Second),
	}))

	pending, err := s.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, store.PendingCreateTask, pending[0].Kind)
	assert.Nil(t, pending[0].EntityID)
	require.NotNil(t, pending[1].EntityID)
	assert.Equal(t, 42, *pending[1].EntityID)

	require.NoError(t, s.ResolvePending(ctx, id))
	pending, err = s.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, store.PendingDeleteTask, pending[0].Kind)

	// Resolving an unknown ID is a no-op.
	require.NoError(t, s.ResolvePending(ctx, "does-not-exist"))
}
