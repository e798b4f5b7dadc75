package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for leave requests.
type Repository interface {
	Create(ctx context.Context, r Request) (int64, error)
	Get(ctx context.Context, id int64) (*Request, error)
	Settle(ctx context.Context, id int64, status Status, decidedBy int64, decidedAt time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]Request, error)
	ListPending(ctx context.Context) ([]Request, error)
}

// PGRepository implements Repository using PostgreSQL. User emails are joined
// in so approval notifications need no second lookup.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `
lr.id, lr.user_id, u.email, lr.type, lr.start_date, lr.end_date, lr.reason,
lr.status, lr.decided_by, lr.decided_at, lr.created_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.UserID, &r.UserEmail, &r.Type, &r.StartDate, &r.EndDate,
		&r.Reason, &r.Status, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a pending request and returns its id.
func (r *PGRepository) Create(ctx context.Context, req Request) (int64, error) {
	const q = `
INSERT INTO leave_requests (user_id, type, start_date, end_date, reason, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q, req.UserID, req.Type, req.StartDate, req.EndDate,
		req.Reason, StatusPending, time.Now().UTC()).Scan(&id)
	return id, err
}

// Get fetches one request by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Request, error) {
	const q = `
SELECT ` + requestColumns + `
FROM leave_requests lr
JOIN users u ON u.id = lr.user_id
WHERE lr.id = $1`
	req, err := scanRequest(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// Settle records the decision on a pending request. The status guard in the
// WHERE clause makes settling idempotent under races.
func (r *PGRepository) Settle(ctx context.Context, id int64, status Status, decidedBy int64, decidedAt time.Time) error {
	const q = `
UPDATE leave_requests
SET status = $2, decided_by = $3, decided_at = $4
WHERE id = $1 AND status = $5`
	tag, err := r.pool.Exec(ctx, q, id, status, decidedBy, decidedAt.UTC(), StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadySettled
	}
	return nil
}

// ListByUser returns a user's requests, newest first.
func (r *PGRepository) ListByUser(ctx context.Context, userID int64) ([]Request, error) {
	const q = `
SELECT ` + requestColumns + `
FROM leave_requests lr
JOIN users u ON u.id = lr.user_id
WHERE lr.user_id = $1
ORDER BY lr.created_at DESC`
	return r.list(ctx, q, userID)
}

// ListPending returns all pending requests, oldest first.
func (r *PGRepository) ListPending(ctx context.Context) ([]Request, error) {
	const q = `
SELECT ` + requestColumns + `
FROM leave_requests lr
JOIN users u ON u.id = lr.user_id
WHERE lr.status = 'PENDING'
ORDER BY lr.created_at`
	return r.list(ctx, q)
}

func (r *PGRepository) list(ctx context.Context, q string, args ...any) ([]Request, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
