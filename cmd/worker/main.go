package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/atrium-hq/atrium/internal/app"
	jobmetrics "github.com/atrium-hq/atrium/internal/jobs"
	"github.com/atrium-hq/atrium/internal/ledger"
	"github.com/atrium-hq/atrium/internal/platform/db"
	"github.com/atrium-hq/atrium/internal/statement"
	"github.com/atrium-hq/atrium/internal/view"
	"github.com/atrium-hq/atrium/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	opening, err := decimal.NewFromString(cfg.LedgerOpeningBalance)
	if err != nil {
		logger.Error("parse opening balance", slog.String("value", cfg.LedgerOpeningBalance), slog.Any("error", err))
		os.Exit(1)
	}

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := jobmetrics.NewMetrics(nil)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, nil, nil, ledger.ServiceConfig{OpeningBalance: opening})

	renderer := statement.NewRenderer(templates)
	pdfClient := statement.NewPDFClient(cfg.GotenbergURL)

	prerenderJob := jobs.NewStatementPrerenderJob(ledgerService, renderer, pdfClient, cfg.StatementStorageDir, cfg.AccountHolder, logger, metrics)
	integrityJob := jobs.NewLedgerIntegrityJob(pool, ledgerRepo, opening, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStatementPrerender, Handler: prerenderJob.Handle},
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// First of the month, once the previous period is closed.
			{Spec: "30 0 1 * *", Task: jobs.NewStatementPrerenderTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: jobs.NewLedgerIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
