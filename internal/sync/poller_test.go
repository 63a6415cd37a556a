package sync_test

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
	"github.com/minhng/taskdeck/internal/session"
	"github.com/minhng/taskdeck/internal/store"
	appsync "github.com/minhng/taskdeck/internal/sync"
	"github.com/minhng/taskdeck/tests/testutil"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tasks": [
			{"id": 1, "user_id": 1, "title": "sync me", "status": "TODO", "priority": "MEDIUM",
			 "created_at": "2026-08-30T10:00:00", "updated_at": "2026-08-30T10:00:00"}
		], "total": 1, "skip": 0, "limit": 100}`))
	})
	mux.HandleFunc("/api/todos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"todos": [
			{"id": 2, "user_id": 1, "title": "project",
			 "created_at": "2026-08-30T10:00:00", "updated_at": "2026-08-30T10:00:00"}
		], "total": 1, "skip": 0, "limit": 100}`))
	})
	mux.HandleFunc("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stats": {"total_tasks": 1, "completed_tasks": 0,
			"completion_percentage": 0, "status_breakdown": {}, "priority_breakdown": {},
			"overdue_tasks": 0, "due_today": 0, "total_todos": 1},
			"recent_tasks": [], "due_today": [], "overdue": []}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPollerRefreshesSnapshot(t *testing.T) {
	srv := fakeBackend(t)
	s := testutil.NewTestStore(t)

	client := api.New(srv.URL, session.NewMemoryStore(), zerolog.Nop())
	p := appsync.New(client, s, time.Hour, 100, zerolog.Nop())
	t.Cleanup(p.Stop)

	msg := p.Start()()
	result, ok := msg.(appsync.SyncResultMsg)
	require.True(t, ok, "expected SyncResultMsg, got %T", msg)
	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.TaskCount)
	assert.Equal(t, 1, result.TodoCount)

	ctx := context.Background()
	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "sync me", tasks[0].Title)

	todos, err := s.GetTodos(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, todos, 1)

	summary, fetchedAt, err := s.LoadDashboard(ctx)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Stats.TotalTasks)
	assert.False(t, fetchedAt.IsZero())

	assert.Equal(t, appsync.SyncIdle, p.Status().State)
}

func TestPollerReportsAuthExpiry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := testutil.NewTestStore(t)
	client := api.New(srv.URL, session.NewMemoryStore(), zerolog.Nop())
	p := appsync.New(client, s, time.Hour, 100, zerolog.Nop())

	msg := p.Start()()
	result, ok := msg.(appsync.SyncResultMsg)
	require.True(t, ok)
	require.Error(t, result.Error)
	assert.True(t, result.AuthExpired)
	assert.Equal(t, appsync.SyncError, p.Status().State)
}

func TestPollerFailedCycleWritesNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := testutil.NewTestStore(t)
	client := api.New(srv.URL, session.NewMemoryStore(), zerolog.Nop())
	p := appsync.New(client, s, time.Hour, 100, zerolog.Nop())
	t.Cleanup(p.Stop)

	msg := p.Start()()
	result, ok := msg.(appsync.SyncResultMsg)
	require.True(t, ok)
	require.Error(t, result.Error)

	tasks, err := s.GetTasks(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
