package projects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for boards, tasks and comments.
type Repository interface {
	CreateBoard(ctx context.Context, b Board) (int64, error)
	GetBoard(ctx context.Context, id int64) (*Board, error)
	ListBoards(ctx context.Context) ([]Board, error)
	DeleteBoard(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, t Task) (int64, error)
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, boardID int64) ([]Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status TaskStatus) error
	DeleteTask(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, c Comment) (int64, error)
	ListComments(ctx context.Context, taskID int64) ([]Comment, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateBoard inserts a board and returns its id.
func (r *PGRepository) CreateBoard(ctx context.Context, b Board) (int64, error) {
	const q = `
INSERT INTO project_boards (name, description, created_by, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q, b.Name, b.Description, b.CreatedBy, time.Now().UTC()).Scan(&id)
	return id, err
}

// GetBoard fetches one board.
func (r *PGRepository) GetBoard(ctx context.Context, id int64) (*Board, error) {
	const q = `SELECT id, name, description, created_by, created_at FROM project_boards WHERE id = $1`
	var b Board
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.Name, &b.Description, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListBoards returns all boards, newest first.
func (r *PGRepository) ListBoards(ctx context.Context) ([]Board, error) {
	const q = `SELECT id, name, description, created_by, created_at FROM project_boards ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// DeleteBoard removes a board; tasks and comments cascade in the schema.
func (r *PGRepository) DeleteBoard(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_boards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTask inserts a task and returns its id.
func (r *PGRepository) CreateTask(ctx context.Context, t Task) (int64, error) {
	const q = `
INSERT INTO project_tasks (board_id, title, details, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q, t.BoardID, t.Title, t.Details, t.Status, t.CreatedBy, time.Now().UTC()).Scan(&id)
	return id, err
}

// GetTask fetches one task.
func (r *PGRepository) GetTask(ctx context.Context, id int64) (*Task, error) {
	const q = `
SELECT id, board_id, title, details, status, created_by, created_at, updated_at
FROM project_tasks WHERE id = $1`
	var t Task
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.BoardID, &t.Title, &t.Details, &t.Status, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTasks returns a board's tasks, oldest first.
func (r *PGRepository) ListTasks(ctx context.Context, boardID int64) ([]Task, error) {
	const q = `
SELECT id, board_id, title, details, status, created_by, created_at, updated_at
FROM project_tasks WHERE board_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.BoardID, &t.Title, &t.Details, &t.Status, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus moves a task to another lane.
func (r *PGRepository) UpdateTaskStatus(ctx context.Context, id int64, status TaskStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE project_tasks SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task and its comments.
func (r *PGRepository) DeleteTask(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateComment appends to a task's thread and returns the comment id.
func (r *PGRepository) CreateComment(ctx context.Context, c Comment) (int64, error) {
	const q = `
INSERT INTO project_comments (task_id, author_id, body, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q, c.TaskID, c.AuthorID, c.Body, time.Now().UTC()).Scan(&id)
	return id, err
}

// ListComments returns a task's thread, oldest first.
func (r *PGRepository) ListComments(ctx context.Context, taskID int64) ([]Comment, error) {
	const q = `
SELECT c.id, c.task_id, c.author_id, u.email, c.body, c.created_at
FROM project_comments c
JOIN users u ON u.id = c.author_id
WHERE c.task_id = $1
ORDER BY c.created_at`
	rows, err := r.pool.Query(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.AuthorEmail, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
