package orders

import (
	"fmt"
	"math"
	"strings"
)

// OrderEdit carries raw values for the fields a user changed on an order row.
// Values are coerced with the same rules as ingestion.
type OrderEdit struct {
	Values map[Field]any
}

// PriceEdit carries the editable columns of a price-index row.
type PriceEdit struct {
	SupplierName           *string
	ProductCode            *string
	LowestPurchasePriceUSD *float64
}

// Writer routes edits back onto the authoritative order slice.
type Writer struct{}

// ApplyOrderEdit updates the order identified by id and returns a new slice.
// Changing the purchase price recomputes the dependent totals afterwards.
func (Writer) ApplyOrderEdit(orders []Order, id string, edit OrderEdit) ([]Order, Order, error) {
	pos := indexOf(orders, id)
	if pos < 0 {
		return orders, Order{}, fmt.Errorf("%w: order %q", ErrNotFound, id)
	}
	updated := orders[pos]
	for f, raw := range edit.Values {
		updated.Set(f, raw)
	}
	if strings.TrimSpace(updated.OrderNumber) == "" {
		return orders, Order{}, fmt.Errorf("%w: order number is required", ErrValidation)
	}
	if _, ok := edit.Values[FieldUnitPurchasePriceUSD]; ok {
		recompute(&updated)
	}
	return replaceAt(orders, pos, updated), updated, nil
}

// ApplyPriceEdit resolves sourceOrderID, the back-reference held by a
// PriceIndexEntry, and writes the edit onto that order.
func (Writer) ApplyPriceEdit(orders []Order, sourceOrderID string, edit PriceEdit) ([]Order, Order, error) {
	pos := indexOf(orders, sourceOrderID)
	if pos < 0 {
		return orders, Order{}, fmt.Errorf("%w: source order %q", ErrNotFound, sourceOrderID)
	}
	updated := orders[pos]
	if edit.SupplierName != nil {
		updated.SupplierName = strings.TrimSpace(*edit.SupplierName)
	}
	if edit.ProductCode != nil {
		updated.ProductCode = strings.TrimSpace(*edit.ProductCode)
	}
	if edit.LowestPurchasePriceUSD != nil {
		updated.UnitPurchasePriceUSD = *edit.LowestPurchasePriceUSD
		recompute(&updated)
	}
	return replaceAt(orders, pos, updated), updated, nil
}

// recompute derives purchase total and gross profit from the unit purchase price.
// A zero quantity leaves the totals untouched.
func recompute(o *Order) {
	if o.Quantity == 0 || math.IsNaN(o.Quantity) || math.IsInf(o.Quantity, 0) {
		return
	}
	o.TotalPurchaseValueUSD = o.UnitPurchasePriceUSD * o.Quantity
	if math.IsNaN(o.TotalSellValue) || math.IsInf(o.TotalSellValue, 0) {
		return
	}
	o.GrossProfitUSD = o.TotalSellValue - o.TotalPurchaseValueUSD
	if o.TotalSellValue == 0 {
		o.GrossProfitPercentage = ZeroPercent
		return
	}
	o.GrossProfitPercentage = FormatPercent(o.GrossProfitUSD / o.TotalSellValue * 100)
}

func indexOf(orders []Order, id string) int {
	if id == "" {
		return -1
	}
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func replaceAt(orders []Order, pos int, o Order) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	out[pos] = o
	return out
}
