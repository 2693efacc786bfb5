package orders

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Row is one parsed input row keyed by header.
type Row map[string]any

// Table is a parsed spreadsheet: headers in file order plus header-keyed rows.
type Table struct {
	Headers []string
	Rows    []Row
}

// IngestOptions carries optional per-import hints.
type IngestOptions struct {
	// ProductCodeHint names the column an advisory source believes holds
	// product codes. It is honoured only when it matches a header verbatim.
	ProductCodeHint string
}

// IngestResult reports the accepted orders and aggregate counts.
type IngestResult struct {
	Orders   []Order
	Accepted int
	Skipped  int
	Warnings []string
}

type columnBinding struct {
	header string
	field  Field
}

// Ingestor turns parsed tables into canonical orders.
type Ingestor struct {
	mapper *SchemaMapper
	newID  func() string
}

// NewIngestor builds an Ingestor. Nil arguments fall back to the default alias
// table and random UUID identifiers.
func NewIngestor(mapper *SchemaMapper, newID func() string) *Ingestor {
	if mapper == nil {
		mapper = NewSchemaMapper(nil)
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Ingestor{mapper: mapper, newID: newID}
}

// Ingest maps, coerces and validates every row of t. Rows without an order
// number are dropped; nothing else rejects a row.
func (in *Ingestor) Ingest(t *Table, opts IngestOptions) (IngestResult, error) {
	if t == nil {
		return IngestResult{}, ErrNoTable
	}
	var result IngestResult
	if len(t.Headers) == 0 {
		return result, nil
	}
	bindings, warnings := in.bind(t.Headers, opts.ProductCodeHint)
	result.Warnings = warnings

	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		if isBlankRow(row) {
			result.Skipped++
			continue
		}
		draft := Order{}
		for _, b := range bindings {
			draft.Set(b.field, cell(row, b.header))
		}
		if strings.TrimSpace(draft.OrderNumber) == "" {
			result.Skipped++
			continue
		}
		draft.ID = in.uniqueID(seen)
		result.Orders = append(result.Orders, draft)
		result.Accepted++
	}
	return result, nil
}

// NewOrder builds one order from field values entered directly by a user.
// The order number is required.
func (in *Ingestor) NewOrder(values map[Field]any) (Order, error) {
	o := Order{}
	for f, raw := range values {
		o.Set(f, raw)
	}
	if o.OrderNumber == "" {
		return Order{}, fmt.Errorf("%w: order number is required", ErrValidation)
	}
	o.ID = in.newID()
	return o, nil
}

// bind resolves every header once per table.
func (in *Ingestor) bind(headers []string, hint string) ([]columnBinding, []string) {
	var warnings []string
	hinted := ""
	if hint != "" {
		for _, h := range headers {
			if h != hint {
				continue
			}
			// A hint never takes a column away from another field.
			if f, ok := in.mapper.Resolve(h); ok && f != FieldProductCode {
				warnings = append(warnings, fmt.Sprintf("product code hint %q ignored; column maps to %s", h, f))
				break
			}
			hinted = h
			break
		}
	}

	bindings := make([]columnBinding, 0, len(headers))
	sources := make(map[Field][]string)
	for _, h := range headers {
		var field Field
		switch {
		case hinted != "" && h == hinted:
			field = FieldProductCode
		default:
			f, ok := in.mapper.Resolve(h)
			if !ok {
				continue
			}
			if f == FieldProductCode && hinted != "" {
				continue
			}
			field = f
		}
		bindings = append(bindings, columnBinding{header: h, field: field})
		sources[field] = append(sources[field], h)
	}

	if len(sources[FieldOrderNumber]) == 0 {
		warnings = append(warnings, "order number column not found; every row will be skipped")
	}
	for _, f := range Fields {
		if cols := sources[f]; len(cols) > 1 {
			warnings = append(warnings, fmt.Sprintf("field %s mapped by columns %q; last column wins", f, cols))
		}
	}
	return bindings, warnings
}

func (in *Ingestor) uniqueID(seen map[string]struct{}) string {
	for {
		id := in.newID()
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		return id
	}
}

func cell(row Row, header string) any {
	if v, ok := row[header]; ok {
		return v
	}
	return row[strings.TrimSpace(header)]
}

func isBlankRow(row Row) bool {
	if len(row) == 0 {
		return true
	}
	if len(row) == 1 {
		for _, v := range row {
			s, ok := v.(string)
			return ok && s == ""
		}
	}
	return false
}
