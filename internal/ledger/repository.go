package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository is the transaction store boundary. The engine never mutates
// records in place; the only writes are create and delete.
type Repository interface {
	ListAll(ctx context.Context) ([]Event, error)
	Create(ctx context.Context, ev Event) (Event, error)
	DeleteByID(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Amounts travel through SQL as text so no precision is lost between
// numeric columns and decimal.Decimal.
const listEventsQuery = `
	SELECT id, kind, amount::text, category, title, description, occurred_at, created_by, created_at
	FROM ledger_events
	ORDER BY occurred_at, id
`

func (r *repository) ListAll(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, listEventsQuery)
	if err != nil {
		return nil, fmt.Errorf("ledger: list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: list events: %w", err)
	}
	return events, nil
}

func (r *repository) Create(ctx context.Context, ev Event) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ledger_events (kind, amount, category, title, description, occurred_at, created_by)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		ev.Kind, ev.Amount.String(), ev.Category, ev.Title, ev.Description, ev.OccurredAt.UTC(), ev.CreatedBy,
	)
	if err := row.Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return Event{}, fmt.Errorf("ledger: create event: %w", err)
	}
	return ev, nil
}

func (r *repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ledger_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ledger: delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Errorf(ErrNotFound, "id %d", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		ev        Event
		amount    string
		kind      string
		createdAt time.Time
	)
	if err := row.Scan(&ev.ID, &kind, &amount, &ev.Category, &ev.Title, &ev.Description, &ev.OccurredAt, &ev.CreatedBy, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("ledger: scan event: %w", err)
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return Event{}, Errorf(ErrValidation, "event %d has non-numeric amount %q", ev.ID, amount)
	}
	ev.Kind = Kind(kind)
	ev.Amount = value
	ev.CreatedAt = createdAt
	return ev, nil
}
