package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/session"
	appsync "github.com/minhng/taskdeck/internal/sync"
	"github.com/minhng/taskdeck/tests/testutil"
)

func newTestModel(t *testing.T, handler http.Handler) Model {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := testutil.NewTestStore(t)
	sess := session.NewMemoryStore()
	client := api.New(srv.URL, sess, zerolog.Nop())
	poller := appsync.New(client, s, time.Hour, 100, zerolog.Nop())
	t.Cleanup(poller.Stop)

	cfg := &model.AppConfig{
		Server:  model.ServerConfig{BaseURL: srv.URL},
		Sync:    model.SyncConfig{IntervalSec: 3600, PageSize: 100},
		Display: model.DisplayConfig{Theme: "default", PageSize: 50},
	}

	return New(cfg, filepath.Join(t.TempDir(), "config.yaml"), client, s, sess, poller, zerolog.Nop())
}

func TestCreateTaskResolvesJournal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "user_id": 1, "title": "new task",
			"status": "TODO", "priority": "MEDIUM",
			"created_at": "2026-08-30T10:00:00", "updated_at": "2026-08-30T10:00:00"}`))
	})

	m := newTestModel(t, mux)

	msg := m.createTaskCmd(api.CreateTaskRequest{Title: "new task"})()
	result, ok := msg.(taskMutatedMsg)
	require.True(t, ok, "expected taskMutatedMsg, got %T", msg)
	require.NoError(t, result.err)
	assert.Equal(t, "create", result.action)

	// The journal entry covers only the in-flight window.
	pending, err := m.store.GetPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFailedMutationReportsErrorAndResolvesJournal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Title already exists"}`))
	})

	m := newTestModel(t, mux)

	msg := m.createTaskCmd(api.CreateTaskRequest{Title: "dup"})()
	result, ok := msg.(taskMutatedMsg)
	require.True(t, ok)
	require.Error(t, result.err)
	assert.Equal(t, "Title already exists", result.err.Error())

	pending, err := m.store.GetPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestToggleTaskCompleteFlipsStatus(t *testing.T) {
	var gotBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/7", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "user_id": 1, "title": "t",
			"status": "COMPLETED", "priority": "MEDIUM",
			"created_at": "2026-08-30T10:00:00", "updated_at": "2026-08-30T10:00:00"}`))
	})

	m := newTestModel(t, mux)

	task := model.Task{ID: 7, Title: "t", Status: model.StatusTodo}
	msg := m.toggleTaskCompleteCmd(task)()
	result, ok := msg.(taskMutatedMsg)
	require.True(t, ok)
	require.NoError(t, result.err)

	assert.Equal(t, map[string]any{"status": "COMPLETED"}, gotBody)

	// Toggling a completed task reopens it.
	task.Status = model.StatusCompleted
	msg = m.toggleTaskCompleteCmd(task)()
	result, ok = msg.(taskMutatedMsg)
	require.True(t, ok)
	require.NoError(t, result.err)
	assert.Equal(t, map[string]any{"status": "TODO"}, gotBody)
}

func TestDeleteProjectResolvesJournal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/todos/3", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	m := newTestModel(t, mux)

	msg := m.deleteProjectCmd(3)()
	result, ok := msg.(projectMutatedMsg)
	require.True(t, ok)
	require.NoError(t, result.err)
	assert.Equal(t, "delete", result.action)

	pending, err := m.store.GetPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}
