package orders

import "strings"

// Placeholder values written into lookup results without a match.
const (
	LookupNotFound   = "Not Found"
	LookupEmptyInput = "Empty Input Code"
	NotAvailable     = "N/A"
)

// LookupResult answers one input code against the price index.
type LookupResult struct {
	InputCode        string  `json:"input_code"`
	Matched          bool    `json:"matched"`
	SupplierName     string  `json:"supplier_name"`
	PurchasePriceUSD float64 `json:"purchase_price_usd,omitempty"`
	OrderNumber      string  `json:"order_number"`
}

// PriceText renders the price column, "N/A" when nothing matched.
func (r LookupResult) PriceText() string {
	if !r.Matched {
		return NotAvailable
	}
	return formatNumber(r.PurchasePriceUSD)
}

// LookupCodes finds the cheapest supplier for every code, preserving input
// order. Codes are compared trimmed and case-insensitively.
func LookupCodes(index []PriceIndexEntry, codes []string) []LookupResult {
	best := make(map[string]PriceIndexEntry, len(index))
	for _, e := range index {
		k := strings.ToLower(strings.TrimSpace(e.ProductCode))
		if cur, ok := best[k]; !ok || e.LowestPurchasePriceUSD < cur.LowestPurchasePriceUSD {
			best[k] = e
		}
	}
	out := make([]LookupResult, 0, len(codes))
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		r := LookupResult{InputCode: code, OrderNumber: NotAvailable}
		if code == "" {
			r.SupplierName = LookupEmptyInput
			out = append(out, r)
			continue
		}
		e, ok := best[strings.ToLower(code)]
		if !ok {
			r.SupplierName = LookupNotFound
			out = append(out, r)
			continue
		}
		r.Matched = true
		r.SupplierName = e.SupplierName
		r.PurchasePriceUSD = e.LowestPurchasePriceUSD
		r.OrderNumber = e.SourceOrderNumber
		out = append(out, r)
	}
	return out
}

// CodeColumnAliases are normalized headers recognised as a product code column.
var CodeColumnAliases = []string{"bonhoeffercode", "code", "bcode", "itemcode", "partnumber"}

// ColumnSource records how a code column was chosen.
type ColumnSource string

const (
	ColumnFromHint    ColumnSource = "hint"
	ColumnFromAlias   ColumnSource = "alias"
	ColumnFromDefault ColumnSource = "first_column"
)

// ResolveCodeColumn picks the code column of a lookup table: a hint naming an
// existing header wins, then the first alias match, then the first header.
func ResolveCodeColumn(headers []string, hint string) (string, ColumnSource, bool) {
	if len(headers) == 0 {
		return "", "", false
	}
	if hint != "" {
		for _, h := range headers {
			if h == hint {
				return h, ColumnFromHint, true
			}
		}
	}
	aliases := make(map[string]struct{}, len(CodeColumnAliases))
	for _, a := range CodeColumnAliases {
		aliases[a] = struct{}{}
	}
	for _, h := range headers {
		if _, ok := aliases[NormalizeHeader(h)]; ok {
			return h, ColumnFromAlias, true
		}
	}
	return headers[0], ColumnFromDefault, true
}

// CodesFromTable reads column from every row as trimmed text.
func CodesFromTable(t *Table, column string) []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		codes = append(codes, CoerceText(cell(row, column)))
	}
	return codes
}
