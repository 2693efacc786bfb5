package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/jobs"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLookupOffline(t *testing.T) {
	dir := t.TempDir()
	ordersPath := writeFixture(t, dir, "orders.csv", "Order No,Supplier,B. Code,Price in USD\nPO-1,Acme,X1,10\nPO-2,Beta,X1,7\n")
	codesPath := writeFixture(t, dir, "codes.csv", "Item Code\nx1\nnone\n")

	var out bytes.Buffer
	summary, err := Lookup(context.Background(), ordersPath, codesPath, &out)
	require.NoError(t, err)
	require.Equal(t, "Item Code", summary.Column)
	require.Equal(t, orders.ColumnFromAlias, summary.Source)
	require.Equal(t, 2, summary.Codes)
	require.Equal(t, 1, summary.Matched)

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Lookup Results")
	require.NoError(t, err)
	require.Equal(t, "Beta", rows[1][1])
	require.Equal(t, "PO-2", rows[1][3])
}

func TestRunLookupWritesFile(t *testing.T) {
	dir := t.TempDir()
	ordersPath := writeFixture(t, dir, "orders.csv", "Order No,Supplier,Bonhoeffer Code,Price in USD\nPO-1,Acme,X1,10\n")
	codesPath := writeFixture(t, dir, "codes.csv", "Code\nX1\n")
	outPath := filepath.Join(dir, "result.xlsx")

	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), "", []string{"lookup", ordersPath, codesPath, outPath}, &stdout))
	require.Contains(t, stdout.String(), "1 of 1 codes matched")
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	ctx := context.Background()
	require.ErrorIs(t, Run(ctx, "", nil, &bytes.Buffer{}), ErrUsage)
	require.ErrorIs(t, Run(ctx, "", []string{"frobnicate"}, &bytes.Buffer{}), ErrUsage)
	require.ErrorIs(t, Run(ctx, "", []string{"lookup", "a"}, &bytes.Buffer{}), ErrUsage)
	require.ErrorIs(t, Run(ctx, "", []string{"jobs"}, &bytes.Buffer{}), ErrUsage)
}

func TestJobsTrigger(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewJobsCLI(mr.Addr())
	defer c.Close()

	info, err := c.Trigger(context.Background(), "sheet-refresh")
	require.NoError(t, err)
	require.Equal(t, jobs.TaskSheetRefresh, info.Type)

	info, err = c.Trigger(context.Background(), jobs.TaskSheetRefresh, "https://docs.google.com/spreadsheets/d/abc/edit", "Q1")
	require.NoError(t, err)
	var payload jobs.SheetRefreshPayload
	require.NoError(t, json.Unmarshal(info.Payload, &payload))
	require.Equal(t, "Q1", payload.SheetName)

	_, err = c.Trigger(context.Background(), "reindex")
	require.Error(t, err)
	_, err = c.Trigger(context.Background(), "sheet-refresh", "a", "b", "c")
	require.ErrorIs(t, err, ErrUsage)

	pending, err := mr.List("asynq:{" + jobs.QueueDefault + "}:pending")
	require.NoError(t, err)
	require.Len(t, pending, 2)
}
