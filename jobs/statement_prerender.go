package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/atrium-hq/atrium/internal/jobs"
	"github.com/atrium-hq/atrium/internal/ledger"
	"github.com/atrium-hq/atrium/internal/statement"
)

// StatementPrerenderJob renders the previous month's statement PDF into the
// storage directory so the export endpoint can serve busy months from disk.
type StatementPrerenderJob struct {
	Ledger        *ledger.Service
	Renderer      *statement.Renderer
	PDF           *statement.PDFClient
	StorageDir    string
	AccountHolder string
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
	clock         func() time.Time
}

// NewStatementPrerenderJob initialises the prerender handler.
func NewStatementPrerenderJob(svc *ledger.Service, renderer *statement.Renderer, pdf *statement.PDFClient, storageDir, accountHolder string, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatementPrerenderJob {
	return &StatementPrerenderJob{
		Ledger:        svc,
		Renderer:      renderer,
		PDF:           pdf,
		StorageDir:    storageDir,
		AccountHolder: accountHolder,
		Logger:        logger,
		Metrics:       metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewStatementPrerenderTask constructs the cron task.
func NewStatementPrerenderTask() *asynq.Task {
	return asynq.NewTask(TaskStatementPrerender, nil)
}

// Handle renders and stores the statement for the month that just closed.
func (j *StatementPrerenderJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Ledger == nil || j.Renderer == nil || j.PDF == nil {
		return errors.New("statement prerender: handler not configured")
	}

	tracker := j.Metrics.Track(TaskStatementPrerender)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	prev := j.clock().AddDate(0, -1, 0)
	period := ledger.Period{Mode: ledger.PeriodMonthly, Year: prev.Year(), Month: prev.Month()}

	ov, err := j.Ledger.Overview(ctx, period)
	if err != nil {
		resultErr = fmt.Errorf("overview %s: %w", period.Label(), err)
		return resultErr
	}
	st, err := statement.Build(ov.Lines, ov.Summary, period, j.AccountHolder)
	if err != nil {
		if errors.Is(err, statement.ErrEmptyPeriod) {
			j.logger().Info("statement prerender skipped, empty period", slog.String("period", period.Label()))
			return nil
		}
		resultErr = err
		return resultErr
	}

	html, err := j.Renderer.HTML(st)
	if err != nil {
		resultErr = fmt.Errorf("render html: %w", err)
		return resultErr
	}
	pdf, err := j.PDF.RenderHTML(ctx, html)
	if err != nil {
		resultErr = fmt.Errorf("render pdf: %w", err)
		return resultErr
	}

	if err := os.MkdirAll(j.StorageDir, 0o755); err != nil {
		resultErr = err
		return resultErr
	}
	name := fmt.Sprintf("statement-%04d-%02d.pdf", period.Year, period.Month)
	path := filepath.Join(j.StorageDir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		resultErr = err
		return resultErr
	}

	j.logger().Info("statement prerendered", slog.String("period", period.Label()), slog.String("path", path))
	return nil
}

func (j *StatementPrerenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
