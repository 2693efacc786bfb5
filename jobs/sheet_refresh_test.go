package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/orderdesk/internal/jobs"
	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/sheets"
)

type stubLoader struct {
	calls     int
	url, name string
	result    orders.ImportResult
	err       error
}

func (s *stubLoader) LoadSheet(ctx context.Context, url, sheetName string) (orders.ImportResult, error) {
	s.calls++
	s.url, s.name = url, sheetName
	return s.result, s.err
}

func newTestJob(loader SheetLoader) *SheetRefreshJob {
	return NewSheetRefreshJob(loader, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestSheetRefreshLoadsStoredSheet(t *testing.T) {
	loader := &stubLoader{result: orders.ImportResult{Accepted: 4}}
	task, err := NewSheetRefreshTask(SheetRefreshPayload{})
	require.NoError(t, err)

	require.NoError(t, newTestJob(loader).Handle(context.Background(), task))
	require.Equal(t, 1, loader.calls)
	require.Empty(t, loader.url)
}

func TestSheetRefreshPassesPayloadOverrides(t *testing.T) {
	loader := &stubLoader{}
	task, err := NewSheetRefreshTask(SheetRefreshPayload{URL: "https://docs.google.com/spreadsheets/d/x", SheetName: "Q1"})
	require.NoError(t, err)

	require.NoError(t, newTestJob(loader).Handle(context.Background(), task))
	require.Equal(t, "https://docs.google.com/spreadsheets/d/x", loader.url)
	require.Equal(t, "Q1", loader.name)
}

func TestSheetRefreshSkipsWithoutSheet(t *testing.T) {
	loader := &stubLoader{err: fmt.Errorf("%w: sheet loading disabled", orders.ErrNoSheet)}
	require.NoError(t, newTestJob(loader).Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil)))
}

func TestSheetRefreshErrorClassification(t *testing.T) {
	private := &stubLoader{err: fmt.Errorf("%w (status 403)", sheets.ErrNotPublic)}
	err := newTestJob(private).Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil))
	require.ErrorIs(t, err, asynq.SkipRetry)

	down := &stubLoader{err: fmt.Errorf("%w: status 503", sheets.ErrUpstream)}
	err = newTestJob(down).Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil))
	require.ErrorIs(t, err, sheets.ErrUpstream)
	require.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestSheetRefreshRejectsBadPayload(t *testing.T) {
	loader := &stubLoader{}
	err := newTestJob(loader).Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, loader.calls)

	var nilJob *SheetRefreshJob
	require.Error(t, nilJob.Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil)))
}

type stubLocker struct {
	held     bool
	released bool
	err      error
}

func (s *stubLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if s.held {
		return nil, false, nil
	}
	s.held = true
	return func(context.Context) error {
		s.held = false
		s.released = true
		return nil
	}, true, nil
}

func TestSheetRefreshHoldsLock(t *testing.T) {
	loader := &stubLoader{}
	locker := &stubLocker{}
	job := newTestJob(loader)
	job.Locker = locker

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil)))
	require.Equal(t, 1, loader.calls)
	require.True(t, locker.released)

	locker.held = true
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil)))
	require.Equal(t, 1, loader.calls)

	locker.held = false
	locker.err = errors.New("redis down")
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskSheetRefresh, nil)))
	require.Equal(t, 1, loader.calls)
}
