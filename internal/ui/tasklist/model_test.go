package tasklist_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/keys"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/session"
	"github.com/minhng/taskdeck/internal/ui/tasklist"
	"github.com/minhng/taskdeck/tests/testutil"
)

func TestLoadTasksFromBackend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tasks": [
			{"id": 1, "user_id": 1, "title": "from server", "status": "TODO",
			 "priority": "MEDIUM", "created_at": "2026-08-30T10:00:00",
			 "updated_at": "2026-08-30T10:00:00"}
		], "total": 120, "skip": 0, "limit": 50}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := testutil.NewTestStore(t)
	client := api.New(srv.URL, session.NewMemoryStore(), zerolog.Nop())
	m := tasklist.New(client, s, keys.DefaultKeyMap(), 50, 80, 24)

	msg := m.LoadTasks()()
	loaded, ok := msg.(tasklist.TasksLoadedMsg)
	require.True(t, ok, "expected TasksLoadedMsg, got %T", msg)
	require.NoError(t, loaded.Err)
	assert.False(t, loaded.Offline)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, "from server", loaded.Tasks[0].Title)
	assert.Equal(t, 120, loaded.Total)
}

func TestLoadTasksFallsBackToSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // unreachable backend

	s := testutil.NewTestStore(t)
	now := model.NewTime(time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.ReplaceTasks(context.Background(), []model.Task{
		{ID: 1, UserID: 1, Title: "cached", Status: model.StatusTodo,
			Priority: model.PriorityMedium, CreatedAt: now, UpdatedAt: now},
	}))

	client := api.New(srv.URL, session.NewMemoryStore(), zerolog.Nop())
	m := tasklist.New(client, s, keys.DefaultKeyMap(), 50, 80, 24)

	msg := m.LoadTasks()()
	loaded, ok := msg.(tasklist.TasksLoadedMsg)
	require.True(t, ok)
	assert.True(t, loaded.Offline)
	require.Error(t, loaded.Err)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, "cached", loaded.Tasks[0].Title)
}
