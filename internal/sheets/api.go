package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/tabular"
)

// APIFetcher reads spreadsheets through the Sheets v4 API. It serves the same
// links as Fetcher and returns formatted cell values.
type APIFetcher struct {
	svc *sheetsapi.Service
}

// NewAPIFetcher builds a client authenticated with an API key. Extra options
// are appended, which lets tests point the client at a local server.
func NewAPIFetcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*APIFetcher, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := sheetsapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets: api client: %w", err)
	}
	return &APIFetcher{svc: svc}, nil
}

// Fetch reads sheetName, or the first sheet when empty.
func (f *APIFetcher) Fetch(ctx context.Context, link, sheetName string) (*orders.Table, error) {
	id, err := SpreadsheetID(link)
	if err != nil {
		return nil, err
	}
	if sheetName == "" {
		doc, err := f.svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return nil, apiError(err)
		}
		if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
			return &orders.Table{}, nil
		}
		sheetName = doc.Sheets[0].Properties.Title
	}
	values, err := f.svc.Spreadsheets.Values.Get(id, quoteSheet(sheetName)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apiError(err)
	}
	records := make([][]string, len(values.Values))
	for i, row := range values.Values {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = fmt.Sprint(v)
		}
		records[i] = rec
	}
	return tabular.FromRecords(records), nil
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusForbidden, http.StatusNotFound, http.StatusUnauthorized:
			return fmt.Errorf("%w (status %d)", ErrNotPublic, gerr.Code)
		}
		return fmt.Errorf("%w: api status %d: %v", ErrUpstream, gerr.Code, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
