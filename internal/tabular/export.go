package tabular

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

const (
	ordersSheet = "Orders"
	lookupSheet = "Lookup Results"
)

// column is one exported column: its label, width in characters and value.
type column[T any] struct {
	label string
	width float64
	value func(n int, item T) any
}

func orDefault(s, def string) any {
	if s == "" {
		return def
	}
	return s
}

// orderColumns keeps the labels of the original workbook so an export
// re-imports through the alias table.
var orderColumns = []column[orders.Order]{
	{"S. No", 8, func(n int, _ orders.Order) any { return n }},
	{"Status", 15, func(_ int, o orders.Order) any { return orDefault(o.Status, orders.NotAvailable) }},
	{"Order No", 15, func(_ int, o orders.Order) any { return o.OrderNumber }},
	{"SEGMENT", 15, func(_ int, o orders.Order) any { return o.Segment }},
	{"Sub Sagment", 15, func(_ int, o orders.Order) any { return o.SubSegment }},
	{"Customer Name", 20, func(_ int, o orders.Order) any { return o.CustomerName }},
	{"Country", 15, func(_ int, o orders.Order) any { return o.Country }},
	{"Product", 20, func(_ int, o orders.Order) any { return o.Product }},
	{"Bonhorffer Code", 18, func(_ int, o orders.Order) any { return o.ProductCode }},
	{"Qty", 8, func(_ int, o orders.Order) any { return o.Quantity }},
	{"sell price in USD", 18, func(_ int, o orders.Order) any { return o.UnitSellPrice }},
	{"Total sell In USD", 18, func(_ int, o orders.Order) any { return o.TotalSellValue }},
	{"Supplier", 20, func(_ int, o orders.Order) any { return o.SupplierName }},
	{"Purches Price In USD", 20, func(_ int, o orders.Order) any { return o.UnitPurchasePriceUSD }},
	{"Total Price IN Usd", 20, func(_ int, o orders.Order) any { return o.TotalPurchaseValueUSD }},
	{"GP In USD", 12, func(_ int, o orders.Order) any { return o.GrossProfitUSD }},
	{"GP in %", 10, func(_ int, o orders.Order) any { return orDefault(o.GrossProfitPercentage, orders.ZeroPercent) }},
}

var lookupColumns = []column[orders.LookupResult]{
	{"Input Bonhoeffer Code", 25, func(_ int, r orders.LookupResult) any { return r.InputCode }},
	{"Found Supplier Name", 30, func(_ int, r orders.LookupResult) any { return r.SupplierName }},
	{"Found Purchase Price (USD)", 25, func(_ int, r orders.LookupResult) any {
		if !r.Matched {
			return orders.NotAvailable
		}
		return r.PurchasePriceUSD
	}},
	{"Found Order No", 20, func(_ int, r orders.LookupResult) any { return r.OrderNumber }},
}

// OrderHeaders lists the export column labels in order.
func OrderHeaders() []string {
	return labels(orderColumns)
}

// WriteOrdersXLSX writes the orders as a workbook with a single "Orders" sheet.
func WriteOrdersXLSX(w io.Writer, list []orders.Order) error {
	return writeWorkbook(w, ordersSheet, orderColumns, list)
}

// WriteLookupXLSX writes lookup results as a "Lookup Results" sheet.
func WriteLookupXLSX(w io.Writer, results []orders.LookupResult) error {
	return writeWorkbook(w, lookupSheet, lookupColumns, results)
}

// WriteOrdersCSV streams the orders with the workbook's columns.
func WriteOrdersCSV(w io.Writer, list []orders.Order) error {
	rows := newCSVRows(w)
	if err := rows.write(OrderHeaders()); err != nil {
		return err
	}
	record := make([]string, len(orderColumns))
	for i, o := range list {
		for c, col := range orderColumns {
			record[c] = cellString(col.value(i+1, o))
		}
		if err := rows.write(record); err != nil {
			return err
		}
	}
	return rows.flush()
}

func writeWorkbook[T any](w io.Writer, sheet string, cols []column[T], items []T) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("tabular: name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("tabular: stream writer: %w", err)
	}
	for i, col := range cols {
		if err := sw.SetColWidth(i+1, i+1, col.width); err != nil {
			return fmt.Errorf("tabular: column width: %w", err)
		}
	}
	header := make([]any, len(cols))
	for i, l := range labels(cols) {
		header[i] = l
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("tabular: write header: %w", err)
	}
	for n, item := range items {
		values := make([]any, len(cols))
		for i, col := range cols {
			values[i] = col.value(n+1, item)
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("tabular: write row %d: %w", n+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("tabular: flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("tabular: write workbook: %w", err)
	}
	return nil
}

func labels[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.label
	}
	return out
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
