package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

var (
	// ErrUnsupportedFormat indicates a file extension no parser handles.
	ErrUnsupportedFormat = errors.New("tabular: unsupported file format")
	// ErrEmptyFile indicates an upload without content.
	ErrEmptyFile = errors.New("tabular: empty file")
	// ErrMalformed indicates content that does not decode as its extension
	// claims.
	ErrMalformed = errors.New("tabular: malformed file")
)

// Parse reads an uploaded file into a table, choosing the parser by extension.
func Parse(filename string, data []byte) (*orders.Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".xlsx":
		return ParseXLSX(bytes.NewReader(data))
	case ".xls":
		return ParseXLS(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseCSV reads delimited text with a header row. A UTF-8 or UTF-16 byte
// order mark is honoured; empty input yields an empty table.
func ParseCSV(r io.Reader) (*orders.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", ErrMalformed, err)
		}
		records = append(records, rec)
	}
	return FromRecords(records), nil
}

// ParseXLSX reads the first worksheet using each cell's displayed text, the
// same representation a CSV export of the sheet would carry.
func ParseXLSX(r io.Reader) (*orders.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &orders.Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformed, sheets[0], err)
	}
	return FromRecords(rows), nil
}

// ParseXLS reads the first worksheet of a legacy BIFF (Excel 97-2003)
// workbook.
func ParseXLS(r io.ReadSeeker) (table *orders.Table, err error) {
	// the BIFF decoder panics on some truncated streams
	defer func() {
		if p := recover(); p != nil {
			table, err = nil, fmt.Errorf("%w: read xls: %v", ErrMalformed, p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open xls: %v", ErrMalformed, err)
	}
	if wb == nil {
		return nil, fmt.Errorf("%w: no workbook stream", ErrMalformed)
	}
	if wb.NumSheets() == 0 {
		return &orders.Table{}, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return &orders.Table{}, nil
	}
	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		rec := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			rec[c] = row.Col(c)
		}
		records = append(records, rec)
	}
	return FromRecords(records), nil
}

// FromRecords turns raw records into a table: the first non-empty record holds
// the headers (trimmed), empty records are skipped and short records leave the
// trailing columns absent.
func FromRecords(records [][]string) *orders.Table {
	t := &orders.Table{}
	headerSeen := false
	for _, rec := range records {
		if isEmptyRecord(rec) {
			continue
		}
		if !headerSeen {
			t.Headers = make([]string, len(rec))
			for i, h := range rec {
				t.Headers[i] = strings.TrimSpace(h)
			}
			headerSeen = true
			continue
		}
		row := make(orders.Row, len(t.Headers))
		for i, h := range t.Headers {
			if i >= len(rec) {
				break
			}
			row[h] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
