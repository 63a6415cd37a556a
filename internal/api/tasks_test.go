package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/model"
)

// fakeTaskBackend is a minimal in-memory /api/tasks implementation with
// the backend's defaulting rules (status TODO, priority MEDIUM).
type fakeTaskBackend struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]map[string]interface{}
}

func newFakeTaskBackend() *fakeTaskBackend {
	return &fakeTaskBackend{nextID: 1, tasks: map[int]map[string]interface{}{}}
}

func (b *fakeTaskBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/api/tasks/" && r.Method == http.MethodPost:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["status"]; !ok {
			body["status"] = "TODO"
		}
		if _, ok := body["priority"]; !ok {
			body["priority"] = "MEDIUM"
		}
		body["id"] = b.nextID
		body["user_id"] = 1
		body["created_at"] = "2026-08-30T10:00:00"
		body["updated_at"] = "2026-08-30T10:00:00"
		b.tasks[b.nextID] = body
		b.nextID++
		json.NewEncoder(w).Encode(body)

	case r.URL.Path == "/api/tasks/" && r.Method == http.MethodGet:
		list := []map[string]interface{}{}
		for _, t := range b.tasks {
			list = append(list, t)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": list,
			"total": len(b.tasks),
			"skip":  0,
			"limit": 50,
		})

	default:
		var id int
		if _, err := fmt.Sscanf(r.URL.Path, "/api/tasks/%d", &id); err != nil {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Not found"}`))
			return
		}
		task, ok := b.tasks[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Task not found"}`))
			return
		}

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(task)
		case http.MethodPut:
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			for k, v := range body {
				task[k] = v
			}
			json.NewEncoder(w).Encode(task)
		case http.MethodDelete:
			delete(b.tasks, id)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func TestCreateThenGetTaskRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, newFakeTaskBackend())
	ctx := context.Background()

	created, err := client.CreateTask(ctx, api.CreateTaskRequest{Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", created.Title)
	assert.Equal(t, model.StatusTodo, created.Status)
	assert.Equal(t, model.PriorityMedium, created.Priority)

	got, err := client.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, model.StatusTodo, got.Status)
}

func TestCreateTaskHonorsCallerStatus(t *testing.T) {
	client, _ := newTestClient(t, newFakeTaskBackend())

	created, err := client.CreateTask(context.Background(), api.CreateTaskRequest{
		Title:    "B",
		Status:   model.StatusBlocked,
		Priority: model.PriorityUrgent,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusBlocked, created.Status)
	assert.Equal(t, model.PriorityUrgent, created.Priority)
}

func TestUpdateTaskSendsOnlyChangedFields(t *testing.T) {
	var gotBody map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/5", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 5, "user_id": 1, "title": "T", "status": "COMPLETED",
			"priority": "LOW",
			"created_at": "2026-08-30T10:00:00",
			"updated_at": "2026-08-30T11:00:00"
		}`))
	})

	client, _ := newTestClient(t, mux)

	status := model.StatusCompleted
	updated, err := client.UpdateTask(context.Background(), 5, api.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)

	assert.Equal(t, map[string]interface{}{"status": "COMPLETED"}, gotBody)
}

func TestListTasksSendsPaginationAndFilters(t *testing.T) {
	var gotQuery map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tasks": [], "total": 120, "skip": 20, "limit": 20}`))
	})

	client, _ := newTestClient(t, mux)

	todoID := 9
	list, err := client.ListTasks(context.Background(), 20, 20, api.TaskFilter{
		TodoID:   &todoID,
		Status:   model.StatusInProgress,
		Priority: model.PriorityHigh,
		Search:   "deploy",
	})
	require.NoError(t, err)
	assert.Equal(t, 120, list.Total)
	assert.LessOrEqual(t, len(list.Tasks), 20)

	assert.Equal(t, []string{"20"}, gotQuery["skip"])
	assert.Equal(t, []string{"20"}, gotQuery["limit"])
	assert.Equal(t, []string{"9"}, gotQuery["todo_id"])
	assert.Equal(t, []string{"IN_PROGRESS"}, gotQuery["status"])
	assert.Equal(t, []string{"HIGH"}, gotQuery["priority"])
	assert.Equal(t, []string{"deploy"}, gotQuery["search"])
}

func TestListTotalStableAcrossCalls(t *testing.T) {
	backend := newFakeTaskBackend()
	client, _ := newTestClient(t, backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.CreateTask(ctx, api.CreateTaskRequest{Title: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
	}

	first, err := client.ListTasks(ctx, 0, 50, api.TaskFilter{})
	require.NoError(t, err)
	second, err := client.ListTasks(ctx, 0, 50, api.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
}

func TestTaskTimestampsParseBackendFormat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Naive ISO timestamps, as FastAPI emits them.
		w.Write([]byte(`{
			"id": 3, "user_id": 1, "title": "T", "status": "TODO",
			"priority": "MEDIUM",
			"due_date": "2026-09-01T00:00:00",
			"created_at": "2026-08-30T10:15:30.123456",
			"updated_at": "2026-08-30T10:15:30"
		}`))
	})

	client, _ := newTestClient(t, mux)

	task, err := client.GetTask(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), task.DueDate.Time)
	assert.Equal(t, 2026, task.CreatedAt.Year())
}
