package orders

import (
	"strings"

	"github.com/odyssey-erp/orderdesk/internal/shared"
)

// SearchOrders keeps orders where any field contains q, case-insensitively.
// An empty query returns the input unchanged.
func SearchOrders(orders []Order, q string) []Order {
	needle := strings.ToLower(q)
	if needle == "" {
		return orders
	}
	out := make([]Order, 0)
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.ID), needle) {
			out = append(out, o)
			continue
		}
		for _, f := range Fields {
			if strings.Contains(strings.ToLower(o.Value(f)), needle) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// SearchPriceIndex matches supplier, product code, source order number or price.
func SearchPriceIndex(entries []PriceIndexEntry, q string) []PriceIndexEntry {
	needle := strings.ToLower(q)
	if needle == "" {
		return entries
	}
	out := make([]PriceIndexEntry, 0)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.SupplierName), needle) ||
			strings.Contains(strings.ToLower(e.ProductCode), needle) ||
			strings.Contains(strings.ToLower(e.SourceOrderNumber), needle) ||
			strings.Contains(formatNumber(e.LowestPurchasePriceUSD), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Paginate slices items for the requested 1-based page.
func Paginate[T any](items []T, page, perPage int) ([]T, shared.Pagination) {
	p := shared.NewPagination(page, perPage, len(items))
	start, end := p.Bounds()
	return items[start:end], p
}
