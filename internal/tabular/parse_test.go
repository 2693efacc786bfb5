package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

func TestParseCSVStripsBOMAndTrimsHeaders(t *testing.T) {
	data := "\ufeff Order No ,Product,Qty\r\nPO-1,Pump,2\r\n\r\n,,\r\nPO-2,\"Valve, brass\"\r\n"
	table, err := Parse("orders.CSV", []byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"Order No", "Product", "Qty"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "PO-1", table.Rows[0]["Order No"])
	require.Equal(t, "Valve, brass", table.Rows[1]["Product"])
	_, present := table.Rows[1]["Qty"]
	require.False(t, present)
}

func TestParseRejectsUnknownAndEmpty(t *testing.T) {
	_, err := Parse("orders.pdf", []byte("x"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Parse("orders.csv", nil)
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseCSVEmptyInput(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, table.Headers)
	require.Empty(t, table.Rows)
}

func TestParseXLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Order No", " B. Code ", "Qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"PO-1", "X1", 3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"PO-2", "Y2"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	table, err := Parse("orders.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{"Order No", "B. Code", "Qty"}, table.Headers)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "3", table.Rows[0]["Qty"])
	require.Equal(t, "Y2", table.Rows[1]["B. Code"])
}

func TestParseRejectsMalformedContent(t *testing.T) {
	cases := map[string][]byte{
		"orders.xlsx": []byte("not a workbook"),
		"orders.xls":  []byte("plain text renamed to xls"),
	}
	for name, data := range cases {
		_, err := Parse(name, data)
		require.ErrorIs(t, err, ErrMalformed, name)
		require.NotErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestOrdersXLSXReimportsThroughAliases(t *testing.T) {
	in := []orders.Order{
		{
			ID: "a", Status: "Shipped", OrderNumber: "PO-1", Segment: "Industrial", SubSegment: "Food",
			CustomerName: "Contoso", Country: "ID", Product: "Pump", ProductCode: "X1",
			Quantity: 3, UnitSellPrice: 10, TotalSellValue: 30, SupplierName: "Acme",
			UnitPurchasePriceUSD: 5, TotalPurchaseValueUSD: 15, GrossProfitUSD: 15, GrossProfitPercentage: "50.00%",
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersXLSX(&buf, in))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, []string{"Orders"}, f.GetSheetList())
	width, err := f.GetColWidth("Orders", "F")
	require.NoError(t, err)
	require.Equal(t, float64(20), width)
	require.NoError(t, f.Close())

	table, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, OrderHeaders(), table.Headers)

	res, err := orders.NewIngestor(nil, nil).Ingest(table, orders.IngestOptions{})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	got := res.Orders[0]
	got.ID = in[0].ID
	require.Equal(t, in[0], got)
}

func TestWriteOrdersCSVDefaults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, []orders.Order{{OrderNumber: "PO-1", Quantity: 2.5}}))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "S. No,Status,Order No,SEGMENT"))
	require.Equal(t, "1,N/A,PO-1,,,,,,,2.5,0,0,,0,0,0,0.00%", lines[1])
}

func TestCSVRowsFlushInterval(t *testing.T) {
	var buf bytes.Buffer
	rows := newCSVRows(&buf)
	for i := 0; i < csvFlushRows; i++ {
		require.NoError(t, rows.write([]string{"row"}))
	}
	require.Zero(t, rows.pending)
	require.Equal(t, csvFlushRows*len("row\r\n"), buf.Len())

	require.NoError(t, rows.write([]string{"next"}))
	require.Equal(t, 1, rows.pending)
	require.NoError(t, rows.flush())
	require.True(t, strings.HasSuffix(buf.String(), "next\r\n"))
}

func TestWriteLookupXLSX(t *testing.T) {
	results := orders.LookupCodes(nil, []string{"X1", ""})
	var buf bytes.Buffer
	require.NoError(t, WriteLookupXLSX(&buf, results))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Lookup Results")
	require.NoError(t, err)
	require.Equal(t, []string{"Input Bonhoeffer Code", "Found Supplier Name", "Found Purchase Price (USD)", "Found Order No"}, rows[0])
	require.Equal(t, []string{"X1", orders.LookupNotFound, orders.NotAvailable, orders.NotAvailable}, rows[1])
	require.Equal(t, []string{"", orders.LookupEmptyInput, orders.NotAvailable, orders.NotAvailable}, rows[2])
}
