package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPriceIndexKeepsLowestPrice(t *testing.T) {
	orders := []Order{
		{ID: "a", OrderNumber: "PO-10", SupplierName: "Acme", ProductCode: "X1", UnitPurchasePriceUSD: 10},
		{ID: "b", OrderNumber: "PO-8", SupplierName: "Acme", ProductCode: "X1", UnitPurchasePriceUSD: 8},
	}
	idx := BuildPriceIndex(orders)
	require.Len(t, idx, 1)
	require.Equal(t, float64(8), idx[0].LowestPurchasePriceUSD)
	require.Equal(t, "PO-8", idx[0].SourceOrderNumber)
	require.Equal(t, "b", idx[0].SourceOrderID)
	require.Equal(t, PriceKey{Supplier: "Acme", ProductCode: "X1"}, idx[0].Key)
}

func TestBuildPriceIndexTieFavoursLastSeen(t *testing.T) {
	orders := []Order{
		{ID: "a", OrderNumber: "PO-1", SupplierName: "Acme", ProductCode: "X1", UnitPurchasePriceUSD: 5},
		{ID: "b", OrderNumber: "PO-2", SupplierName: "Acme", ProductCode: "X1", UnitPurchasePriceUSD: 5},
		{ID: "c", OrderNumber: "PO-3", SupplierName: "Acme", ProductCode: "X1", UnitPurchasePriceUSD: 6},
	}
	idx := BuildPriceIndex(orders)
	require.Len(t, idx, 1)
	require.Equal(t, "PO-2", idx[0].SourceOrderNumber)
	require.Equal(t, "b", idx[0].SourceOrderID)
}

func TestBuildPriceIndexSkipsIncompleteOrdersAndSorts(t *testing.T) {
	orders := []Order{
		{ID: "1", SupplierName: "beta", ProductCode: "B", UnitPurchasePriceUSD: 1},
		{ID: "2", SupplierName: "Acme", ProductCode: "Z", UnitPurchasePriceUSD: 2},
		{ID: "3", SupplierName: "Acme", ProductCode: "A", UnitPurchasePriceUSD: 3},
		{ID: "4", SupplierName: "", ProductCode: "A", UnitPurchasePriceUSD: 1},
		{ID: "5", SupplierName: "Acme", ProductCode: "", UnitPurchasePriceUSD: 1},
	}
	idx := BuildPriceIndex(orders)
	require.Len(t, idx, 3)
	require.Equal(t, "3", idx[0].SourceOrderID)
	require.Equal(t, "2", idx[1].SourceOrderID)
	require.Equal(t, "1", idx[2].SourceOrderID)
}

func TestBuildPriceIndexSeparatorInFieldsDoesNotCollide(t *testing.T) {
	orders := []Order{
		{ID: "1", SupplierName: "A|B", ProductCode: "C", UnitPurchasePriceUSD: 1},
		{ID: "2", SupplierName: "A", ProductCode: "B|C", UnitPurchasePriceUSD: 2},
	}
	require.Len(t, BuildPriceIndex(orders), 2)
}

func TestBuildPriceIndexOneEntryPerPairAtTrueMinimum(t *testing.T) {
	prices := []float64{9, 3, 7, 3.5, 12, 3}
	var orders []Order
	for i, p := range prices {
		supplier := "S1"
		if i%2 == 1 {
			supplier = "S2"
		}
		orders = append(orders, Order{ID: string(rune('a' + i)), SupplierName: supplier, ProductCode: "P", UnitPurchasePriceUSD: p})
	}
	idx := BuildPriceIndex(orders)
	require.Len(t, idx, 2)
	require.Equal(t, float64(7), idx[0].LowestPurchasePriceUSD)
	require.Equal(t, float64(3), idx[1].LowestPurchasePriceUSD)
	require.Equal(t, "f", idx[1].SourceOrderID)
}

func TestBuildPriceIndexEmpty(t *testing.T) {
	require.Empty(t, BuildPriceIndex(nil))
}
