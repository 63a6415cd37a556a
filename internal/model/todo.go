package model

// Todo is a user-owned project that groups tasks. Deleting a todo
// cascades to its tasks on the backend.
type Todo struct {
	ID          int    `json:"id" db:"id"`
	UserID      int    `json:"user_id" db:"user_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	CreatedAt   Time   `json:"created_at" db:"created_at"`
	UpdatedAt   Time   `json:"updated_at" db:"updated_at"`
}

// TodoList is the paged envelope returned by the todo listing endpoint.
type TodoList struct {
	Todos []Todo `json:"todos"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
