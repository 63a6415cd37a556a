package app

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/minhng/taskdeck/internal/api"
	"github.com/minhng/taskdeck/internal/model"
	"github.com/minhng/taskdeck/internal/store"
)

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	user       *model.User
	err        error
	registered bool
}

// profileResultMsg carries the outcome of the startup session check.
type profileResultMsg struct {
	user *model.User
	err  error
}

// logoutDoneMsg is sent after the logout round-trip completes.
type logoutDoneMsg struct {
	err error
}

// taskMutatedMsg is sent after a task create/update/delete finishes.
type taskMutatedMsg struct {
	action string
	err    error
}

// projectMutatedMsg is sent after a project create/update/delete finishes.
type projectMutatedMsg struct {
	action string
	err    error
}

// pendingCountMsg carries the number of unconfirmed mutations.
type pendingCountMsg struct {
	count int
}

// projectOptionsMsg carries project choices for the task form selector.
type projectOptionsMsg struct {
	todos []model.Todo
}

// configSavedMsg is sent after the settings form wrote the config file.
type configSavedMsg struct {
	err error
}

// signIn authenticates against the backend. The API client stores the
// returned token in the session store on success.
func (m Model) signInCmd(email, password, name string, register bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		if register {
			resp, err := client.Register(ctx, email, password, name)
			if err != nil {
				return authResultMsg{err: err, registered: true}
			}
			return authResultMsg{user: &resp.User, registered: true}
		}
		resp, err := client.Login(ctx, email, password)
		if err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: &resp.User}
	}
}

// checkSessionCmd validates a stored token by fetching the profile.
func (m Model) checkSessionCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		user, err := client.GetProfile(context.Background())
		return profileResultMsg{user: user, err: err}
	}
}

// logoutCmd notifies the backend and clears the local session. The
// session is cleared even when the request fails.
func (m Model) logoutCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return logoutDoneMsg{err: client.Logout(context.Background())}
	}
}

// mutate records the change in the pending journal, runs the backend
// call, and resolves the journal entry once the call returns. Journal
// bookkeeping failures are logged but never block the mutation itself.
func (m Model) mutate(
	kind string,
	entityID *int,
	payload any,
	done func(error) tea.Msg,
	run func(ctx context.Context) error,
) tea.Cmd {
	s := m.store
	log := m.log

	return func() tea.Msg {
		ctx := context.Background()

		body, err := json.Marshal(payload)
		if err != nil {
			return done(err)
		}

		entry := store.PendingMutation{
			ID:        uuid.New().String(),
			Kind:      kind,
			EntityID:  entityID,
			Payload:   string(body),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.AddPending(ctx, entry); err != nil {
			log.Warn().Err(err).Str("kind", kind).Msg("recording pending mutation")
		} else {
			defer func() {
				if err := s.ResolvePending(context.Background(), entry.ID); err != nil {
					log.Warn().Err(err).Str("id", entry.ID).Msg("resolving pending mutation")
				}
			}()
		}

		return done(run(ctx))
	}
}

func (m Model) createTaskCmd(req api.CreateTaskRequest) tea.Cmd {
	client := m.client
	return m.mutate(store.PendingCreateTask, nil, req,
		func(err error) tea.Msg { return taskMutatedMsg{action: "create", err: err} },
		func(ctx context.Context) error {
			_, err := client.CreateTask(ctx, req)
			return err
		})
}

func (m Model) updateTaskCmd(id int, req api.UpdateTaskRequest) tea.Cmd {
	client := m.client
	return m.mutate(store.PendingUpdateTask, &id, req,
		func(err error) tea.Msg { return taskMutatedMsg{action: "update", err: err} },
		func(ctx context.Context) error {
			_, err := client.UpdateTask(ctx, id, req)
			return err
		})
}

func (m Model) deleteTaskCmd(id int) tea.Cmd {
	client := m.client
	return m.mutate(store.PendingDeleteTask, &id, struct{}{},
		func(err error) tea.Msg { return taskMutatedMsg{action: "delete", err: err} },
		func(ctx context.Context) error {
			return client.DeleteTask(ctx, id)
		})
}

// toggleTaskCompleteCmd flips a task between COMPLETED and TODO.
func (m Model) toggleTaskCompleteCmd(task model.Task) tea.Cmd {
	status := model.StatusCompleted
	if task.IsCompleted() {
		status = model.StatusTodo
	}
	return m.updateTaskCmd(task.ID, api.UpdateTaskRequest{Status: &status})
}

func (m Model) createProjectCmd(req api.CreateTodoRequest) tea.Cmd {
	client := m.client
	return m.mutate(store.PendingCreateTodo, nil, req,
		func(err error) tea.Msg { return projectMutatedMsg{action: "create", err: err} },
		func(ctx context.Context) error {
			_, err := client.CreateTodo(ctx, req)
			return err
		})
}

func (m Model) updateProjectCmd(id int, req api.UpdateTodoRequest) tea.Cmd {
	client := m.client
	return m.mutate(store.PendingUpdateTodo, &id, req,
		func(err error) tea.Msg { return projectMutatedMsg{action: "update", err: err} },
		func(ctx context.Context) error {
			_, err := client.UpdateTodo(ctx, id, req)
			return err
		})
}

func (m Model) deleteProjectCmd(id int) tea.Cmd {
	client := m.client
	return m.mutate(store.PendingDeleteTodo, &id, struct{}{},
		func(err error) tea.Msg { return projectMutatedMsg{action: "delete", err: err} },
		func(ctx context.Context) error {
			return client.DeleteTodo(ctx, id)
		})
}

// loadProjectOptionsCmd reads project choices for the task form from
// the snapshot; the form only needs titles, not fresh data.
func (m Model) loadProjectOptionsCmd() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		todos, err := s.GetTodos(context.Background(), 0, 0)
		if err != nil {
			return projectOptionsMsg{}
		}
		return projectOptionsMsg{todos: todos}
	}
}

// fetchPendingCountCmd counts unconfirmed mutations for the status bar.
func (m Model) fetchPendingCountCmd() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		pending, err := s.GetPending(context.Background())
		if err != nil {
			return pendingCountMsg{}
		}
		return pendingCountMsg{count: len(pending)}
	}
}

// saveConfigCmd writes the configuration file.
func (m Model) saveConfigCmd(cfg model.AppConfig) tea.Cmd {
	path := m.configPath
	return func() tea.Msg {
		return configSavedMsg{err: model.SaveConfig(path, &cfg)}
	}
}
