package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/tabular"
)

// LookupSummary reports what an offline lookup produced.
type LookupSummary struct {
	Column  string
	Source  orders.ColumnSource
	Codes   int
	Matched int
}

// Lookup answers the codes in codesPath against the orders in ordersPath
// without touching shared state, writing the result workbook to out.
func Lookup(ctx context.Context, ordersPath, codesPath string, out io.Writer) (LookupSummary, error) {
	ordersTable, err := readTable(ordersPath)
	if err != nil {
		return LookupSummary{}, err
	}
	codesTable, err := readTable(codesPath)
	if err != nil {
		return LookupSummary{}, err
	}
	svc := orders.NewService(orders.ServiceDeps{})
	if _, err := svc.ImportTable(ctx, ordersTable, orders.ImportReplace, "cli"); err != nil {
		return LookupSummary{}, err
	}
	report, err := svc.Lookup(ctx, codesTable)
	if err != nil {
		return LookupSummary{}, err
	}
	if err := tabular.WriteLookupXLSX(out, report.Results); err != nil {
		return LookupSummary{}, err
	}
	summary := LookupSummary{Column: report.Column, Source: report.Source, Codes: len(report.Results)}
	for _, r := range report.Results {
		if r.Matched {
			summary.Matched++
		}
	}
	return summary, nil
}

func readTable(path string) (*orders.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tabular.Parse(filepath.Base(path), data)
}
