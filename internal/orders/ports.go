package orders

import (
	"context"
	"time"
)

// SnapshotStore persists the whole collection. Save returns the version the
// store assigned to the written snapshot.
type SnapshotStore interface {
	LoadOrders(ctx context.Context) ([]Order, int64, error)
	SaveOrders(ctx context.Context, orders []Order) (int64, error)
	OrdersVersion(ctx context.Context) (int64, error)
}

// SheetSettings remembers the published sheet the collection is loaded from.
type SheetSettings struct {
	URL           string    `json:"url"`
	SheetName     string    `json:"sheet_name,omitempty"`
	LastRefreshAt time.Time `json:"last_refresh_at,omitempty"`
}

// PreferenceStore keeps user preferences between sessions.
type PreferenceStore interface {
	SheetSettings(ctx context.Context) (SheetSettings, bool, error)
	SaveSheetSettings(ctx context.Context, settings SheetSettings) error
}

// SheetSource downloads a published spreadsheet as a table.
type SheetSource interface {
	Fetch(ctx context.Context, url, sheetName string) (*Table, error)
}

// ColumnHinter suggests which header holds product codes. Suggestions are
// advisory; failures and unknown headers are ignored.
type ColumnHinter interface {
	SuggestCodeColumn(ctx context.Context, headers []string, sample []Row) (string, error)
}

// EditRecord describes one reconciled edit for the audit trail.
type EditRecord struct {
	Kind    string
	OrderID string
	Before  Order
	After   Order
	At      time.Time
}

// AuditPort receives reconciled edits.
type AuditPort interface {
	Record(ctx context.Context, rec EditRecord) error
}

// MetricsRecorder observes ingestion and edits.
type MetricsRecorder interface {
	ObserveImport(source string, accepted, skipped int)
	ObserveEdit(kind string)
	SetOrders(n int)
}
