package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/minhng/taskdeck/internal/model"
)

// TaskFilter narrows a task listing. Zero values mean "no filter".
type TaskFilter struct {
	TodoID   *int
	Status   string
	Priority string
	Search   string
}

// CreateTaskRequest is the payload for creating a task. Status and
// priority default on the backend (TODO, MEDIUM) when omitted.
type CreateTaskRequest struct {
	Title       string      `json:"title"`
	TodoID      *int        `json:"todo_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status,omitempty"`
	Priority    string      `json:"priority,omitempty"`
	DueDate     *model.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest is a partial update; nil fields are left untouched
// by the backend.
type UpdateTaskRequest struct {
	Title       *string     `json:"title,omitempty"`
	TodoID      *int        `json:"todo_id,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *string     `json:"status,omitempty"`
	Priority    *string     `json:"priority,omitempty"`
	DueDate     *model.Time `json:"due_date,omitempty"`
}

// ListTasks fetches a page of tasks. The backend caps limit server-side;
// total reflects the filtered count, not the page length.
func (c *Client) ListTasks(
	ctx context.Context,
	skip, limit int,
	filter TaskFilter,
) (*model.TaskList, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))
	if filter.TodoID != nil {
		params.Set("todo_id", strconv.Itoa(*filter.TodoID))
	}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.Priority != "" {
		params.Set("priority", filter.Priority)
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}

	var list model.TaskList
	if err := c.get(ctx, "/api/tasks/?"+params.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, id int) (*model.Task, error) {
	var task model.Task
	if err := c.get(ctx, fmt.Sprintf("/api/tasks/%d", id), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task and returns the backend's copy.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := c.post(ctx, "/api/tasks/", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, id int, req UpdateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := c.put(ctx, fmt.Sprintf("/api/tasks/%d", id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/tasks/%d", id))
}
