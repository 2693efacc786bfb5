package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

type recordingExecer struct {
	sql  string
	args []any
	err  error
}

func (r *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = sql
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestLoggerRecord(t *testing.T) {
	execer := &recordingExecer{}
	logger := NewLogger(execer)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := logger.Record(context.Background(), orders.EditRecord{
		Kind:    orders.EditPrice,
		OrderID: "a",
		Before:  orders.Order{ID: "a", OrderNumber: "PO-1", UnitPurchasePriceUSD: 8},
		After:   orders.Order{ID: "a", OrderNumber: "PO-1", UnitPurchasePriceUSD: 5},
		At:      at,
	})
	require.NoError(t, err)
	require.Contains(t, execer.sql, "INSERT INTO order_edits")
	require.Len(t, execer.args, 6)
	require.Equal(t, orders.EditPrice, execer.args[0])
	require.Equal(t, "PO-1", execer.args[2])

	var after orders.Order
	require.NoError(t, json.Unmarshal(execer.args[4].([]byte), &after))
	require.Equal(t, float64(5), after.UnitPurchasePriceUSD)
	require.Equal(t, at, *execer.args[5].(*time.Time))
}

func TestLoggerRecordValidation(t *testing.T) {
	logger := NewLogger(&recordingExecer{})
	require.Error(t, logger.Record(context.Background(), orders.EditRecord{OrderID: "a"}))
	require.Error(t, logger.Record(context.Background(), orders.EditRecord{Kind: orders.EditOrder}))

	var nilLogger *Logger
	require.Error(t, nilLogger.Record(context.Background(), orders.EditRecord{Kind: orders.EditOrder, OrderID: "a"}))
}

func TestLoggerRecordWrapsDatabaseErrors(t *testing.T) {
	boom := errors.New("connection reset")
	logger := NewLogger(&recordingExecer{err: boom})
	err := logger.Record(context.Background(), orders.EditRecord{Kind: orders.EditOrder, OrderID: "a"})
	require.ErrorIs(t, err, boom)
}

func TestLoggerRecordWithoutTimestampUsesDatabaseClock(t *testing.T) {
	execer := &recordingExecer{}
	require.NoError(t, NewLogger(execer).Record(context.Background(), orders.EditRecord{Kind: orders.EditOrder, OrderID: "a"}))
	require.Nil(t, execer.args[5].(*time.Time))
}
