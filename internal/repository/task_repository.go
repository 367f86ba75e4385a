package repository

import (
	"context"
	"database/sql"
	"time"
)

// Task status values.  They mirror the enum stored in the tasks table.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// ValidTaskStatus reports whether s is one of the known status values.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusPending || s == TaskStatusInProgress || s == TaskStatusCompleted
}

// Task mirrors the 'tasks' table plus the joined display names used by the
// list endpoints.  AssignedName and CreatorName are empty when a query does
// not join users.
type Task struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	OfficeID     uint64    `json:"officeId"`
	AssignedTo   uint64    `json:"assigned_to"`
	CreatedBy    uint64    `json:"created_by"`
	AssignedName string    `json:"assigned_name,omitempty"`
	CreatorName  string    `json:"creator_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskJoinQuery = `SELECT t.id, t.title, t.description, t.status, t.office_id,
       t.assigned_to, t.created_by, a.name, c.name, t.created_at, t.updated_at
  FROM tasks t
  JOIN users a ON a.id = t.assigned_to
  JOIN users c ON c.id = t.created_by`

func scanTask(row interface{ Scan(...any) error }, t *Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OfficeID,
		&t.AssignedTo, &t.CreatedBy, &t.AssignedName, &t.CreatorName,
		&t.CreatedAt, &t.UpdatedAt)
}

// Create inserts a task and populates the generated ID and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *Task) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (title, description, status, office_id, assigned_to, created_by) VALUES (?,?,?,?,?,?)",
		t.Title, t.Description, t.Status, t.OfficeID, t.AssignedTo, t.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return scanTask(r.DB.QueryRowContext(ctx, taskJoinQuery+" WHERE t.id=?", t.ID), t)
}

// GetByID fetches one task with its joined names or ErrNotFound.
func (r *TaskRepo) GetByID(ctx context.Context, id uint64) (Task, error) {
	var t Task
	err := scanTask(r.DB.QueryRowContext(ctx, taskJoinQuery+" WHERE t.id=? LIMIT 1", id), &t)
	if err == sql.ErrNoRows {
		return Task{}, ErrNotFound
	}
	return t, err
}

// ListAll returns every task in the system, newest first.  The result is
// what gets cached under tasks:all.
func (r *TaskRepo) ListAll(ctx context.Context) ([]Task, error) {
	return r.list(ctx, taskJoinQuery+" ORDER BY t.id DESC")
}

// ListByOffice returns one office's tasks, newest first; cached under
// tasks:office:<id>.
func (r *TaskRepo) ListByOffice(ctx context.Context, officeID uint64) ([]Task, error) {
	return r.list(ctx, taskJoinQuery+" WHERE t.office_id=? ORDER BY t.id DESC", officeID)
}

// ListByAssignee returns tasks assigned to one user, newest first.
func (r *TaskRepo) ListByAssignee(ctx context.Context, userID uint64) ([]Task, error) {
	return r.list(ctx, taskJoinQuery+" WHERE t.assigned_to=? ORDER BY t.id DESC", userID)
}

// ListByStatus returns tasks in one status, newest first.
func (r *TaskRepo) ListByStatus(ctx context.Context, status string) ([]Task, error) {
	return r.list(ctx, taskJoinQuery+" WHERE t.status=? ORDER BY t.id DESC", status)
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites title, description and status of an existing task.  The
// row is read back so the caller gets fresh timestamps; a vanished row maps
// to ErrNotFound.  RowsAffected is useless here: MySQL reports 0 for an
// update that leaves every column unchanged.
func (r *TaskRepo) Update(ctx context.Context, t *Task) error {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, status=? WHERE id=?",
		t.Title, t.Description, t.Status, t.ID); err != nil {
		return err
	}
	err := scanTask(r.DB.QueryRowContext(ctx, taskJoinQuery+" WHERE t.id=?", t.ID), t)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// Delete removes a task or returns ErrNotFound.
func (r *TaskRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
