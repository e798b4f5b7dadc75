package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/atrium-hq/atrium/internal/app"
	"github.com/atrium-hq/atrium/internal/attendance"
	"github.com/atrium-hq/atrium/internal/auth"
	"github.com/atrium-hq/atrium/internal/leave"
	"github.com/atrium-hq/atrium/internal/ledger"
	"github.com/atrium-hq/atrium/internal/ledger/fx"
	"github.com/atrium-hq/atrium/internal/observability"
	"github.com/atrium-hq/atrium/internal/platform/cache"
	"github.com/atrium-hq/atrium/internal/platform/db"
	"github.com/atrium-hq/atrium/internal/projects"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/statement"
	"github.com/atrium-hq/atrium/internal/view"
	"github.com/atrium-hq/atrium/jobs"
)

// auditRecorder adapts shared.AuditLogger to the per-domain recorder
// interfaces, fixing the entity name at construction.
type auditRecorder struct {
	logger *shared.AuditLogger
	entity string
}

func (a auditRecorder) Record(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) error {
	return a.logger.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   a.entity,
		EntityID: entityID,
		Meta:     meta,
	})
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "atrium_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	opening, err := decimal.NewFromString(cfg.LedgerOpeningBalance)
	if err != nil {
		logger.Error("parse opening balance", slog.String("value", cfg.LedgerOpeningBalance), slog.Any("error", err))
		os.Exit(1)
	}

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerCache := ledger.NewCache(redisClient, 5*time.Minute)
	ledgerService := ledger.NewService(ledgerRepo, ledgerCache, auditRecorder{logger: auditLogger, entity: "ledger_event"}, ledger.ServiceConfig{OpeningBalance: opening})

	fxRepo := fx.NewRepository(dbpool)
	fxService := fx.NewService(fxRepo, auditRecorder{logger: auditLogger, entity: "fx_wallet_event"}, fx.Policy{AllowOverdraft: cfg.FXAllowOverdraft})

	ledgerHandler := ledger.NewHandler(logger, ledgerService, fxService, templates, csrfManager)
	fxHandler := fx.NewHandler(logger, fxService, templates, csrfManager)

	statementRenderer := statement.NewRenderer(templates)
	pdfClient := statement.NewPDFClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	statementHandler := statement.NewHandler(logger, ledgerService, statementRenderer, pdfClient, cfg.AccountHolder)

	attendanceService := attendance.NewService(attendance.NewRepository(dbpool), nil)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, templates, csrfManager)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	leaveService := leave.NewService(leave.NewRepository(dbpool), jobsClient, logger)
	leaveHandler := leave.NewHandler(logger, leaveService, templates, csrfManager)

	projectsService := projects.NewService(projects.NewRepository(dbpool))
	projectsHandler := projects.NewHandler(logger, projectsService, templates, csrfManager)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Templates:         templates,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		LedgerHandler:     ledgerHandler,
		FXHandler:         fxHandler,
		StatementHandler:  statementHandler,
		AttendanceHandler: attendanceHandler,
		LeaveHandler:      leaveHandler,
		ProjectsHandler:   projectsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
