package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository is the wallet event store boundary.
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

func (r *repository) ListAll(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, amount::text, rate::text, local_equivalent::text,
		       company_name, platform, occurred_at, created_by, created_at
		FROM fx_wallet_events
		ORDER BY occurred_at, id`)
	if err != nil {
		return nil, fmt.Errorf("fx: list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev                      Event
			kind                    string
			amount, rate, localEq   string
			occurredAt, createdAt   time.Time
		)
		if err := rows.Scan(&ev.ID, &kind, &amount, &rate, &localEq,
			&ev.CompanyName, &ev.Platform, &occurredAt, &ev.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("fx: scan event: %w", err)
		}
		ev.Kind = Kind(kind)
		if ev.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("%w: event %d has non-numeric amount %q", ErrValidation, ev.ID, amount)
		}
		if ev.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("%w: event %d has non-numeric rate %q", ErrValidation, ev.ID, rate)
		}
		if ev.LocalEquivalent, err = decimal.NewFromString(localEq); err != nil {
			return nil, fmt.Errorf("%w: event %d has non-numeric local equivalent %q", ErrValidation, ev.ID, localEq)
		}
		ev.OccurredAt = occurredAt
		ev.CreatedAt = createdAt
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fx: list events: %w", err)
	}
	return events, nil
}

func (r *repository) Create(ctx context.Context, ev Event) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO fx_wallet_events (kind, amount, rate, local_equivalent, company_name, platform, occurred_at, created_by)
		VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5, $6, $7, $8)
		RETURNING id, created_at`,
		ev.Kind, ev.Amount.String(), ev.Rate.String(), ev.LocalEquivalent.String(),
		ev.CompanyName, ev.Platform, ev.OccurredAt.UTC(), ev.CreatedBy,
	)
	if err := row.Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return Event{}, fmt.Errorf("fx: create event: %w", err)
	}
	return ev, nil
}

func (r *repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fx_wallet_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("fx: delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
