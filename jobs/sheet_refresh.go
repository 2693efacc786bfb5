package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/orderdesk/internal/jobs"
	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/sheets"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SheetLoader replaces the order collection from a published sheet.
type SheetLoader interface {
	LoadSheet(ctx context.Context, url, sheetName string) (orders.ImportResult, error)
}

// Locker serialises refreshes across processes.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error)
}

const refreshLockName = "sheet_refresh"

// SheetRefreshJob reloads the published sheet on a schedule.
type SheetRefreshJob struct {
	Orders  SheetLoader
	Locker  Locker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewSheetRefreshJob wires dependencies for the refresh handler.
func NewSheetRefreshJob(loader SheetLoader, logger *slog.Logger, metrics *jobmetrics.Metrics) *SheetRefreshJob {
	return &SheetRefreshJob{Orders: loader, Logger: logger, Metrics: metrics, Timeout: 2 * time.Minute}
}

// Handle processes TaskSheetRefresh tasks. A missing sheet configuration is
// not an error; a bad or private sheet is not retried.
func (j *SheetRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Orders == nil {
		return errors.New("sheet refresh: handler not configured")
	}
	var payload SheetRefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskSheetRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	logger := j.logger()
	if j.Locker != nil {
		release, ok, err := j.Locker.TryLock(ctx, refreshLockName, j.lockTTL())
		if err != nil {
			resultErr = err
			return resultErr
		}
		if !ok {
			logger.Info("sheet refresh already running; skipping")
			tracker.Skip()
			return resultErr
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("release refresh lock", slog.Any("error", err))
			}
		}()
	}

	start := time.Now()
	result, err := j.Orders.LoadSheet(ctx, payload.URL, payload.SheetName)
	switch {
	case errors.Is(err, orders.ErrNoSheet):
		logger.Debug("no sheet configured; skipping refresh")
		tracker.Skip()
		return nil
	case errors.Is(err, sheets.ErrInvalidURL), errors.Is(err, sheets.ErrNotPublic):
		logger.Warn("sheet refresh rejected", slog.Any("error", err))
		resultErr = fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		return resultErr
	case err != nil:
		logger.Error("sheet refresh failed", slog.Any("error", err))
		resultErr = err
		return resultErr
	}
	logger.Info("sheet refreshed",
		slog.Int("accepted", result.Accepted),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *SheetRefreshJob) lockTTL() time.Duration {
	if j.Timeout > 0 {
		return j.Timeout + 30*time.Second
	}
	return 5 * time.Minute
}

func (j *SheetRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSheetRefresh))
	}
	return slog.Default().With(slog.String("job", TaskSheetRefresh))
}

func (j *SheetRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
