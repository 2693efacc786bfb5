package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/orderdesk/jobs"
)

// JobsCLI enqueues and inspects orderdesk background jobs from a shell.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI connects both the enqueuer and the inspector to redisAddr.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

func (c *JobsCLI) Close() error {
	return errors.Join(c.inspector.Close(), c.client.Close())
}

// Trigger enqueues the named job. For the sheet refresh, args may carry the
// sheet URL and the sheet name; without them the worker uses the stored
// settings.
func (c *JobsCLI) Trigger(ctx context.Context, name string, args ...string) (*asynq.TaskInfo, error) {
	switch name {
	case jobs.TaskSheetRefresh, "sheet-refresh":
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	if len(args) > 2 {
		return nil, ErrUsage
	}
	var payload jobs.SheetRefreshPayload
	if len(args) > 0 {
		payload.URL = args[0]
	}
	if len(args) > 1 {
		payload.SheetName = args[1]
	}
	return c.client.EnqueueSheetRefresh(ctx, payload)
}

// QueueStats is a snapshot of the default queue.
type QueueStats struct {
	Queue     string
	Size      int
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Failed    int
}

// InspectQueue reads the default queue counters.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return QueueStats{Queue: jobs.QueueDefault}, nil
	}
	if err != nil {
		return QueueStats{}, fmt.Errorf("jobs cli: inspect %s: %w", jobs.QueueDefault, err)
	}
	return QueueStats{
		Queue:     info.Queue,
		Size:      info.Size,
		Pending:   info.Pending,
		Active:    info.Active,
		Scheduled: info.Scheduled,
		Retry:     info.Retry,
		Failed:    info.Failed,
	}, nil
}
