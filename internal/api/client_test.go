package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/session"
)

// newTestClient wires a client and in-memory session store against a
// fake backend handler. The server is torn down with the test.
func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *session.MemoryStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.NewMemoryStore()
	return api.New(srv.URL, sess, zerolog.Nop()), sess
}

func TestErrorMessagePrefersDetailField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Task not found"}`))
	}))

	_, err := client.GetTask(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, "Task not found", err.Error())

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestErrorMessageFallsBackToStatusCode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))

	_, err := client.GetDashboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNonStringDetailFallsBackToStatusCode(t *testing.T) {
	// FastAPI validation errors carry detail as an array.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": [{"loc": ["body", "title"], "msg": "field required"}]}`))
	}))

	_, err := client.GetTask(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "Could not validate credentials", err.Error())
}

func TestNoContentSkipsDecode(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteTask(context.Background(), 7))
	require.NoError(t, client.DeleteTodo(context.Background(), 7))
}

func TestMalformedSuccessBodyIsAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.GetTask(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling response")
}

func TestBearerTokenAttachedWhenSessionPresent(t *testing.T) {
	var gotAuth string
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	}))

	// Without a session, no Authorization header is sent.
	_, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	require.NoError(t, sess.SetToken("abc123"))
	_, err = client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestTransportFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client := api.New(srv.URL, session.NewMemoryStore(), zerolog.Nop())
	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing request")
}
