package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/orderdesk/internal/app"
	"github.com/odyssey-erp/orderdesk/internal/audit"
	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/platform/cache"
	"github.com/odyssey-erp/orderdesk/internal/platform/db"
	"github.com/odyssey-erp/orderdesk/internal/sheets"
	"github.com/odyssey-erp/orderdesk/internal/store"
	"github.com/odyssey-erp/orderdesk/jobs"
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
	snapshots := store.New(redisClient)

	var auditLogger orders.AuditPort
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		auditLogger = audit.NewLogger(pool)
	}

	aliases, err := app.LoadAliases(cfg.AliasFile)
	if err != nil {
		logger.Error("load aliases", slog.Any("error", err))
		os.Exit(1)
	}

	var sheetSource orders.SheetSource = sheets.NewFetcher(sheets.DefaultBaseURL, cfg.SheetFetchTimeout)
	if cfg.SheetsAPIKey != "" {
		apiFetcher, err := sheets.NewAPIFetcher(ctx, cfg.SheetsAPIKey)
		if err != nil {
			logger.Error("init sheets api", slog.Any("error", err))
			os.Exit(1)
		}
		sheetSource = apiFetcher
	}

	service := orders.NewService(orders.ServiceDeps{
		Store:           snapshots,
		Preferences:     snapshots,
		Sheets:          sheetSource,
		Audit:           auditLogger,
		Logger:          logger,
		Ingestor:        orders.NewIngestor(orders.NewSchemaMapper(aliases), nil),
		PerPage:         cfg.RowsPerPage,
		DefaultSheetURL: cfg.SheetURL,
	})

	refreshJob := jobs.NewSheetRefreshJob(service, logger, nil)
	refreshJob.Locker = snapshots
	refreshTask, err := jobs.NewSheetRefreshTask(jobs.SheetRefreshPayload{})
	if err != nil {
		logger.Error("build sheet refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSheetRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SheetRefreshSpec, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
