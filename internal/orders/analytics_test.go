package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func dashboardOrders() []Order {
	return []Order{
		{OrderNumber: "1", Product: "Packing Machine", ProductCode: "M1", SupplierName: "Acme", TotalSellValue: 500, TotalPurchaseValueUSD: 300},
		{OrderNumber: "1", Product: "Machine spare kit", ProductCode: "K1", SupplierName: "Beta", TotalSellValue: 80, TotalPurchaseValueUSD: 400},
		{OrderNumber: "2", Product: "Hydraulic hose assembly", ProductCode: "H1", SupplierName: "Acme", TotalSellValue: 120, TotalPurchaseValueUSD: 50},
		{OrderNumber: "3", Product: "", ProductCode: "", SupplierName: "", TotalSellValue: 10, TotalPurchaseValueUSD: 5},
		{OrderNumber: "3", Product: "Packing Machine", ProductCode: "M2", SupplierName: "Gamma", TotalSellValue: 250, TotalPurchaseValueUSD: 20},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(dashboardOrders())
	require.Equal(t, 5, s.Rows)
	require.Equal(t, 3, s.DistinctOrders)
	require.Equal(t, float64(960), s.TotalSellValue)
	require.Equal(t, float64(775), s.TotalPurchaseValueUSD)
}

func TestTopSuppliers(t *testing.T) {
	top := TopSuppliers(dashboardOrders(), 0)
	require.Equal(t, []SupplierTotal{
		{SupplierName: "Beta", TotalPurchaseValueUSD: 400},
		{SupplierName: "Acme", TotalPurchaseValueUSD: 350},
		{SupplierName: "Gamma", TotalPurchaseValueUSD: 20},
	}, top)
	require.Len(t, TopSuppliers(dashboardOrders(), 1), 1)
}

func TestRankProductsSegments(t *testing.T) {
	orders := dashboardOrders()

	all, err := RankProducts(orders, RankOptions{})
	require.NoError(t, err)
	require.Equal(t, "Packing Machine", all[0].Key)
	require.Equal(t, float64(750), all[0].Value)
	require.Len(t, all, 4)

	machines, err := RankProducts(orders, RankOptions{Segment: SegmentMachines})
	require.NoError(t, err)
	var keys []string
	for _, r := range machines {
		keys = append(keys, r.Key)
	}
	require.ElementsMatch(t, []string{"Packing Machine", unknownProduct}, keys)

	spares, err := RankProducts(orders, RankOptions{Segment: SegmentMachineSpareParts})
	require.NoError(t, err)
	require.Len(t, spares, 1)
	require.Equal(t, "Machine spare kit", spares[0].Key)

	general, err := RankProducts(orders, RankOptions{Segment: SegmentGeneralSpareParts, Metric: MetricImportValue})
	require.NoError(t, err)
	require.Len(t, general, 1)
	require.Equal(t, float64(50), general[0].Value)
}

func TestRankProductsByCodeAndTopN(t *testing.T) {
	ranks, err := RankProducts(dashboardOrders(), RankOptions{Grouping: GroupByProductCode, Metric: MetricImportValue, TopN: -4})
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	require.Equal(t, "K1", ranks[0].Key)

	ranks, err = RankProducts(dashboardOrders(), RankOptions{Grouping: GroupByProductCode})
	require.NoError(t, err)
	var sawUnknown bool
	for _, r := range ranks {
		if r.Key == unknownCode {
			sawUnknown = true
		}
	}
	require.True(t, sawUnknown)
}

func TestRankProductsRejectsUnknownOptions(t *testing.T) {
	_, err := RankProducts(nil, RankOptions{Segment: "tools"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = RankProducts(nil, RankOptions{Metric: "margin"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = RankProducts(nil, RankOptions{Grouping: "country"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestTruncateLabel(t *testing.T) {
	short := "Packing Machine"
	require.Equal(t, short, truncateLabel(short))
	exact := strings.Repeat("a", 30)
	require.Equal(t, exact, truncateLabel(exact))
	long := strings.Repeat("b", 31)
	got := truncateLabel(long)
	require.Equal(t, strings.Repeat("b", 27)+"...", got)
}
