package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atrium-hq/atrium/internal/ledger"
)

// Repository defines persistence for attendance entries.
type Repository interface {
	FindByDay(ctx context.Context, userID int64, day time.Time) (*Entry, error)
	Create(ctx context.Context, e Entry) (int64, error)
	Update(ctx context.Context, e Entry) error
	ListMonth(ctx context.Context, userID int64, p ledger.Period) ([]Entry, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const entryColumns = `id, user_id, day, check_in, check_out, break_start, break_end, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.UserID, &e.Day, &e.CheckIn, &e.CheckOut, &e.BreakStart, &e.BreakEnd, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByDay fetches a user's entry for the given UTC date, or nil when none
// exists.
func (r *PGRepository) FindByDay(ctx context.Context, userID int64, day time.Time) (*Entry, error) {
	const q = `SELECT ` + entryColumns + ` FROM attendance_entries WHERE user_id = $1 AND day = $2`
	e, err := scanEntry(r.pool.QueryRow(ctx, q, userID, day.UTC().Truncate(24*time.Hour)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// Create inserts a new entry and returns its id.
func (r *PGRepository) Create(ctx context.Context, e Entry) (int64, error) {
	const q = `
INSERT INTO attendance_entries (user_id, day, check_in, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q, e.UserID, e.Day, e.CheckIn, time.Now().UTC()).Scan(&id)
	if err != nil {
		// Unique (user_id, day) backstops the service's find-first check
		// against concurrent double check-ins.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyCheckedIn
		}
		return 0, err
	}
	return id, nil
}

// Update persists the mutable columns of an existing entry.
func (r *PGRepository) Update(ctx context.Context, e Entry) error {
	const q = `
UPDATE attendance_entries
SET check_out = $2, break_start = $3, break_end = $4
WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, e.ID, e.CheckOut, e.BreakStart, e.BreakEnd)
	return err
}

// ListMonth returns a user's entries for the period's month, oldest first.
func (r *PGRepository) ListMonth(ctx context.Context, userID int64, p ledger.Period) ([]Entry, error) {
	from := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	const q = `
SELECT ` + entryColumns + `
FROM attendance_entries
WHERE user_id = $1 AND day >= $2 AND day < $3
ORDER BY day`
	rows, err := r.pool.Query(ctx, q, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
