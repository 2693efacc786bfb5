package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSheetRefresh reloads the configured published sheet.
	TaskSheetRefresh = "orders:sheet_refresh"
)

// SheetRefreshPayload optionally overrides the stored sheet location.
type SheetRefreshPayload struct {
	URL       string `json:"url,omitempty"`
	SheetName string `json:"sheet_name,omitempty"`
}

// NewSheetRefreshTask constructs an Asynq task.
func NewSheetRefreshTask(payload SheetRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSheetRefresh, data), nil
}
