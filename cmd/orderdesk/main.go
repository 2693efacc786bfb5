package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/orderdesk/cmd/orderdesk/cli"
	"github.com/odyssey-erp/orderdesk/internal/app"
	"github.com/odyssey-erp/orderdesk/internal/audit"
	"github.com/odyssey-erp/orderdesk/internal/hint"
	"github.com/odyssey-erp/orderdesk/internal/observability"
	"github.com/odyssey-erp/orderdesk/internal/orders"
	ordershttp "github.com/odyssey-erp/orderdesk/internal/orders/http"
	"github.com/odyssey-erp/orderdesk/internal/platform/cache"
	"github.com/odyssey-erp/orderdesk/internal/platform/db"
	"github.com/odyssey-erp/orderdesk/internal/sheets"
	"github.com/odyssey-erp/orderdesk/internal/store"
	"github.com/odyssey-erp/orderdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, cfg.RedisAddr, os.Args[1:], os.Stdout); err != nil {
			logger.Error("command failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

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
		if err := audit.EnsureSchema(ctx, pool); err != nil {
			logger.Error("prepare audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		auditLogger = audit.NewLogger(pool)
	}

	var hinter orders.ColumnHinter
	if cfg.GeminiAPIKey != "" {
		gen, err := hint.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("column hints disabled", slog.Any("error", err))
		} else {
			hinter = hint.NewColumnHinter(gen)
		}
	}

	sheetSource, err := newSheetSource(ctx, cfg)
	if err != nil {
		logger.Error("init sheet source", slog.Any("error", err))
		os.Exit(1)
	}

	aliases, err := app.LoadAliases(cfg.AliasFile)
	if err != nil {
		logger.Error("load aliases", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	service := orders.NewService(orders.ServiceDeps{
		Store:           snapshots,
		Preferences:     snapshots,
		Sheets:          sheetSource,
		Hinter:          hinter,
		Audit:           auditLogger,
		Metrics:         metrics,
		Logger:          logger,
		Ingestor:        orders.NewIngestor(orders.NewSchemaMapper(aliases), nil),
		HintTimeout:     cfg.HintTimeout,
		PerPage:         cfg.RowsPerPage,
		DefaultSheetURL: cfg.SheetURL,
	})
	if err := service.Sync(ctx); err != nil {
		logger.Warn("initial snapshot load", slog.Any("error", err))
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		OrdersHandler: ordershttp.NewHandler(logger, service, cfg.UploadMaxBytes),
		JobHandler:    jobs.NewHandler(inspector, jobClient, logger),
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// newSheetSource prefers the Sheets API when a key is configured.
func newSheetSource(ctx context.Context, cfg *app.Config) (orders.SheetSource, error) {
	if cfg.SheetsAPIKey != "" {
		f, err := sheets.NewAPIFetcher(ctx, cfg.SheetsAPIKey)
		if err != nil {
			return nil, fmt.Errorf("sheets api: %w", err)
		}
		return f, nil
	}
	return sheets.NewFetcher(sheets.DefaultBaseURL, cfg.SheetFetchTimeout), nil
}
