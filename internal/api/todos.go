package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/minhng/taskdeck/internal/model"
)

// CreateTodoRequest is the payload for creating a project (todo).
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateTodoRequest is a partial update; nil fields are left untouched.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListTodos fetches a page of todos.
func (c *Client) ListTodos(ctx context.Context, skip, limit int) (*model.TodoList, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))

	var list model.TodoList
	if err := c.get(ctx, "/api/todos?"+params.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetTodo fetches a single todo by ID.
func (c *Client) GetTodo(ctx context.Context, id int) (*model.Todo, error) {
	var todo model.Todo
	if err := c.get(ctx, fmt.Sprintf("/api/todos/%d", id), &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo creates a todo and returns the backend's copy.
func (c *Client) CreateTodo(ctx context.Context, req CreateTodoRequest) (*model.Todo, error) {
	var todo model.Todo
	if err := c.post(ctx, "/api/todos", req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies a partial update and returns the updated todo.
func (c *Client) UpdateTodo(ctx context.Context, id int, req UpdateTodoRequest) (*model.Todo, error) {
	var todo model.Todo
	if err := c.put(ctx, fmt.Sprintf("/api/todos/%d", id), req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes a todo. The backend cascades the delete to the
// todo's tasks.
func (c *Client) DeleteTodo(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/api/todos/%d", id))
}
