package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/minhng/taskdeck/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceTasks swaps the task snapshot for the given set atomically.
func (s *SQLiteStore) ReplaceTasks(ctx context.Context, tasks []model.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clearing task snapshot: %w", err)
	}

	const query = `
		INSERT INTO tasks (
			id, user_id, todo_id, title, description,
			status, priority, due_date, completed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing task insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err = stmt.ExecContext(ctx,
			t.ID, t.UserID, intOrNil(t.TodoID), t.Title, t.Description,
			t.Status, t.Priority, timeOrNil(t.DueDate), timeOrNil(t.CompletedAt),
			t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting task %d: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTasks retrieves snapshot tasks matching the provided filter.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.TodoID != nil {
		conditions = append(conditions, "todo_id = ?")
		args = append(args, *filter.TodoID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTaskByID retrieves a single snapshot task. Returns nil when the
// task is not in the snapshot.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id int) (*model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying task %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	task, err := scanTask(rows)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ReplaceTodos swaps the todo snapshot for the given set atomically.
func (s *SQLiteStore) ReplaceTodos(ctx context.Context, todos []model.Todo) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos"); err != nil {
		return fmt.Errorf("clearing todo snapshot: %w", err)
	}

	const query = `
		INSERT INTO todos (id, user_id, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing todo insert: %w", err)
	}
	defer stmt.Close()

	for _, td := range todos {
		_, err = stmt.ExecContext(ctx,
			td.ID, td.UserID, td.Title, td.Description,
			td.CreatedAt.UTC(), td.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting todo %d: %w", td.ID, err)
		}
	}

	return tx.Commit()
}

// GetTodos retrieves snapshot todos ordered by last update.
func (s *SQLiteStore) GetTodos(ctx context.Context, limit, offset int) ([]model.Todo, error) {
	query := "SELECT * FROM todos ORDER BY updated_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, td)
	}

	return todos, rows.Err()
}

// GetTodoByID retrieves a single snapshot todo, or nil when absent.
func (s *SQLiteStore) GetTodoByID(ctx context.Context, id int) (*model.Todo, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM todos WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying todo %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	td, err := scanTodo(rows)
	if err != nil {
		return nil, err
	}
	return &td, nil
}

// SaveDashboard stores the latest dashboard payload as JSON.
func (s *SQLiteStore) SaveDashboard(ctx context.Context, summary model.DashboardSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling dashboard payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard (id, payload, fetched_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving dashboard snapshot: %w", err)
	}

	return nil
}

// LoadDashboard returns the last stored dashboard payload and when it
// was fetched. A missing snapshot returns nil without error.
func (s *SQLiteStore) LoadDashboard(ctx context.Context) (*model.DashboardSummary, time.Time, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT payload, fetched_at FROM dashboard WHERE id = 1",
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("loading dashboard snapshot: %w", err)
	}

	var summary model.DashboardSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshaling dashboard payload: %w", err)
	}

	return &summary, fetchedAt, nil
}

// AddPending records a tentative mutation in the journal.
func (s *SQLiteStore) AddPending(ctx context.Context, m PendingMutation) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_mutations (id, kind, entity_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Kind, intOrNil(m.EntityID), m.Payload, m.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording pending mutation %s: %w", m.ID, err)
	}

	return nil
}

// GetPending returns all unresolved mutations, oldest first.
func (s *SQLiteStore) GetPending(ctx context.Context) ([]PendingMutation, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM pending_mutations ORDER BY created_at ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending mutations: %w", err)
	}
	defer rows.Close()

	var pending []PendingMutation
	for rows.Next() {
		var (
			m        PendingMutation
			entityID sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Kind, &entityID, &m.Payload, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending mutation: %w", err)
		}
		if entityID.Valid {
			v := int(entityID.Int64)
			m.EntityID = &v
		}
		pending = append(pending, m)
	}

	return pending, rows.Err()
}

// ResolvePending removes a journal entry once the backend has confirmed
// (or the change has been rolled back). Resolving an unknown ID is a
// no-op.
func (s *SQLiteStore) ResolvePending(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_mutations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("resolving pending mutation %s: %w", id, err)
	}
	return nil
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	var (
		task        model.Task
		todoID      sql.NullInt64
		dueDate     sql.NullTime
		completedAt sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := rows.Scan(
		&task.ID, &task.UserID, &todoID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &dueDate, &completedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	if todoID.Valid {
		v := int(todoID.Int64)
		task.TodoID = &v
	}
	if dueDate.Valid {
		v := model.NewTime(dueDate.Time)
		task.DueDate = &v
	}
	if completedAt.Valid {
		v := model.NewTime(completedAt.Time)
		task.CompletedAt = &v
	}
	task.CreatedAt = model.NewTime(createdAt)
	task.UpdatedAt = model.NewTime(updatedAt)

	return task, nil
}

// scanTodo scans a todo row from a sqlx.Rows result set.
func scanTodo(rows *sqlx.Rows) (model.Todo, error) {
	var (
		td        model.Todo
		createdAt time.Time
		updatedAt time.Time
	)

	err := rows.Scan(
		&td.ID, &td.UserID, &td.Title, &td.Description,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("scanning todo row: %w", err)
	}

	td.CreatedAt = model.NewTime(createdAt)
	td.UpdatedAt = model.NewTime(updatedAt)

	return td, nil
}

// intOrNil converts an optional int to a driver-friendly value.
func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// timeOrNil converts an optional model.Time to a driver-friendly value.
func timeOrNil(t *model.Time) interface{} {
	if t == nil || !t.IsSet() {
		return nil
	}
	return t.UTC()
}
