package orders

import (
	"math"
	"sort"
)

// BuildPriceIndex derives the lowest purchase price per supplier/product pair.
// Orders without a supplier, product code or finite price are ignored. On an
// exact price tie the most recently iterated order becomes the source.
// The result is sorted by supplier, then product code, ordinal.
func BuildPriceIndex(orders []Order) []PriceIndexEntry {
	positions := make(map[PriceKey]int)
	entries := make([]PriceIndexEntry, 0)
	for _, o := range orders {
		price := o.UnitPurchasePriceUSD
		if o.SupplierName == "" || o.ProductCode == "" || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		key := PriceKey{Supplier: o.SupplierName, ProductCode: o.ProductCode}
		pos, ok := positions[key]
		if !ok {
			positions[key] = len(entries)
			entries = append(entries, PriceIndexEntry{
				Key:                    key,
				SupplierName:           o.SupplierName,
				ProductCode:            o.ProductCode,
				LowestPurchasePriceUSD: price,
				SourceOrderNumber:      o.OrderNumber,
				SourceOrderID:          o.ID,
			})
			continue
		}
		entry := &entries[pos]
		switch {
		case price < entry.LowestPurchasePriceUSD:
			entry.LowestPurchasePriceUSD = price
			entry.SourceOrderNumber = o.OrderNumber
			entry.SourceOrderID = o.ID
		case price == entry.LowestPurchasePriceUSD:
			entry.SourceOrderNumber = o.OrderNumber
			entry.SourceOrderID = o.ID
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SupplierName != entries[j].SupplierName {
			return entries[i].SupplierName < entries[j].SupplierName
		}
		return entries[i].ProductCode < entries[j].ProductCode
	})
	return entries
}
