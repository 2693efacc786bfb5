package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/tabular"
)

// DefaultBaseURL hosts the published CSV export.
const DefaultBaseURL = "https://docs.google.com"

var (
	// ErrInvalidURL indicates the link does not name a spreadsheet.
	ErrInvalidURL = errors.New("sheets: invalid spreadsheet url")
	// ErrNotPublic indicates the spreadsheet cannot be read anonymously.
	ErrNotPublic = errors.New("sheets: spreadsheet is not public; share it with \"Anyone with the link can view\"")
	// ErrUpstream indicates the sheet host failed or was unreachable.
	ErrUpstream = errors.New("sheets: upstream failure")
)

var idPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SpreadsheetID extracts the document id from a spreadsheet link.
func SpreadsheetID(link string) (string, error) {
	m := idPattern.FindStringSubmatch(link)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, link)
	}
	return m[1], nil
}

// Fetcher downloads published spreadsheets through the CSV export endpoint.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewFetcher constructs a fetcher. An empty baseURL uses DefaultBaseURL.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExportURL builds the CSV export address for a spreadsheet and optional sheet.
func (f *Fetcher) ExportURL(id, sheetName string) string {
	u := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv", f.baseURL, id)
	if sheetName != "" {
		u += "&sheet=" + url.QueryEscape(sheetName)
	}
	return u
}

// Fetch downloads the sheet and parses it. An empty export yields an empty table.
func (f *Fetcher) Fetch(ctx context.Context, link, sheetName string) (*orders.Table, error) {
	id, err := SpreadsheetID(link)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ExportURL(id, sheetName), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrNotPublic, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: received page %q", ErrNotPublic, pageTitle(body))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &orders.Table{}, nil
	}
	return tabular.ParseCSV(bytes.NewReader(body))
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}

// pageTitle reads the title of the sign-in page served for private sheets.
func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
