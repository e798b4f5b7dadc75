package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	jobmetrics "github.com/atrium-hq/atrium/internal/jobs"
	"github.com/atrium-hq/atrium/internal/ledger"
)

// LedgerIntegrityJob cross-checks the fold engine against a SQL aggregate:
// the final running balance must equal opening plus the signed sum of all
// events straight from the database.
type LedgerIntegrityJob struct {
	Pool    *pgxpool.Pool
	Repo    ledger.Repository
	Opening decimal.Decimal
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerIntegrityJob initialises the integrity scan handler.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, repo ledger.Repository, opening decimal.Decimal, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{Pool: pool, Repo: repo, Opening: opening, Logger: logger, Metrics: metrics}
}

// NewLedgerIntegrityTask constructs the cron task.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil)
}

// Handle executes the integrity scan.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Repo == nil {
		return errors.New("ledger integrity: handler not configured")
	}

	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	events, err := j.Repo.ListAll(ctx)
	if err != nil {
		resultErr = fmt.Errorf("list events: %w", err)
		return resultErr
	}
	lines, err := ledger.ComputeRunningBalances(events, j.Opening)
	if err != nil {
		resultErr = fmt.Errorf("recompute balances: %w", err)
		return resultErr
	}
	folded := j.Opening
	if len(lines) > 0 {
		folded = lines[len(lines)-1].RunningBalance
	}

	const q = `
SELECT COALESCE(SUM(CASE WHEN kind IN ('INCOME', 'DEPOSIT') THEN amount ELSE -amount END), 0)::text
FROM ledger_events`
	var sumText string
	if err := j.Pool.QueryRow(ctx, q).Scan(&sumText); err != nil {
		resultErr = fmt.Errorf("aggregate events: %w", err)
		return resultErr
	}
	aggregated, err := decimal.NewFromString(sumText)
	if err != nil {
		resultErr = fmt.Errorf("parse aggregate: %w", err)
		return resultErr
	}

	if !folded.Equal(j.Opening.Add(aggregated)) {
		j.Metrics.AddLedgerMismatches(1)
		j.logger().Error("ledger integrity mismatch",
			slog.String("folded", folded.String()),
			slog.String("aggregated", j.Opening.Add(aggregated).String()),
			slog.Int("events", len(events)))
		return nil
	}

	j.logger().Info("ledger integrity verified", slog.Int("events", len(events)), slog.String("balance", folded.String()))
	return nil
}

func (j *LedgerIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
