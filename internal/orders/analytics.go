package orders

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Summary holds the headline order metrics.
type Summary struct {
	Rows                  int     `json:"rows"`
	DistinctOrders        int     `json:"distinct_orders"`
	TotalSellValue        float64 `json:"total_sell_value"`
	TotalPurchaseValueUSD float64 `json:"total_purchase_value_usd"`
}

// Summarize counts distinct order numbers and sums sell and purchase totals.
func Summarize(orders []Order) Summary {
	seen := make(map[string]struct{}, len(orders))
	s := Summary{Rows: len(orders)}
	for _, o := range orders {
		seen[o.OrderNumber] = struct{}{}
		s.TotalSellValue += o.TotalSellValue
		s.TotalPurchaseValueUSD += o.TotalPurchaseValueUSD
	}
	s.DistinctOrders = len(seen)
	return s
}

// DefaultTopSuppliers is the supplier ranking size used when none is given.
const DefaultTopSuppliers = 5

// SupplierTotal is the purchase spend attributed to one supplier.
type SupplierTotal struct {
	SupplierName          string  `json:"supplier_name"`
	TotalPurchaseValueUSD float64 `json:"total_purchase_value_usd"`
}

// TopSuppliers ranks suppliers by summed purchase value, highest first.
// Orders without a supplier are ignored; ties keep first-seen order.
func TopSuppliers(orders []Order, n int) []SupplierTotal {
	if n <= 0 {
		n = DefaultTopSuppliers
	}
	pos := make(map[string]int)
	totals := make([]SupplierTotal, 0)
	for _, o := range orders {
		if o.SupplierName == "" {
			continue
		}
		i, ok := pos[o.SupplierName]
		if !ok {
			i = len(totals)
			pos[o.SupplierName] = i
			totals = append(totals, SupplierTotal{SupplierName: o.SupplierName})
		}
		totals[i].TotalPurchaseValueUSD += o.TotalPurchaseValueUSD
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalPurchaseValueUSD > totals[j].TotalPurchaseValueUSD
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// Segment filters orders by product category for the product ranking.
type Segment string

const (
	SegmentAll               Segment = "all"
	SegmentMachines          Segment = "machines"
	SegmentMachineSpareParts Segment = "machine_spare_parts"
	SegmentGeneralSpareParts Segment = "general_spare_parts"
)

// Metric selects the value ranked products are ordered by.
type Metric string

const (
	MetricExportValue Metric = "export"
	MetricImportValue Metric = "import"
)

// Grouping selects the key products are aggregated under.
type Grouping string

const (
	GroupByProductName Grouping = "product"
	GroupByProductCode Grouping = "code"
)

const (
	DefaultRankTopN = 15
	maxLabelRunes   = 30
	unknownProduct  = "Unknown Product"
	unknownCode     = "Unknown Code"
)

var sparePartKeywords = []string{
	"spare", "part", "parts", "component", "components", "accessory",
	"accessories", "kit", "assy", "assembly", "replacement",
}

// RankOptions configures RankProducts. Zero values select all segments,
// export value, grouping by product name and the default top N.
type RankOptions struct {
	Segment  Segment
	Metric   Metric
	Grouping Grouping
	TopN     int
}

// Normalize fills defaults and rejects unknown enum values.
func (o RankOptions) Normalize() (RankOptions, error) {
	switch o.Segment {
	case "":
		o.Segment = SegmentAll
	case SegmentAll, SegmentMachines, SegmentMachineSpareParts, SegmentGeneralSpareParts:
	default:
		return o, fmt.Errorf("%w: segment %q", ErrValidation, o.Segment)
	}
	switch o.Metric {
	case "":
		o.Metric = MetricExportValue
	case MetricExportValue, MetricImportValue:
	default:
		return o, fmt.Errorf("%w: metric %q", ErrValidation, o.Metric)
	}
	switch o.Grouping {
	case "":
		o.Grouping = GroupByProductName
	case GroupByProductName, GroupByProductCode:
	default:
		return o, fmt.Errorf("%w: grouping %q", ErrValidation, o.Grouping)
	}
	if o.TopN == 0 {
		o.TopN = DefaultRankTopN
	}
	if o.TopN < 1 {
		o.TopN = 1
	}
	return o, nil
}

// ProductRank is one aggregated bar of the product chart.
type ProductRank struct {
	Key                   string  `json:"key"`
	Label                 string  `json:"label"`
	ProductName           string  `json:"product_name"`
	ProductCode           string  `json:"product_code"`
	TotalSellValue        float64 `json:"total_sell_value"`
	TotalPurchaseValueUSD float64 `json:"total_purchase_value_usd"`
	Value                 float64 `json:"value"`
}

// RankProducts aggregates orders in the chosen segment and returns the top
// groups by the chosen metric.
func RankProducts(orders []Order, opts RankOptions) ([]ProductRank, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int)
	ranks := make([]ProductRank, 0)
	for _, o := range orders {
		if !inSegment(o, opts.Segment) {
			continue
		}
		name := o.Product
		if name == "" {
			name = unknownProduct
		}
		code := o.ProductCode
		if code == "" {
			code = unknownCode
		}
		key := name
		if opts.Grouping == GroupByProductCode {
			key = code
		}
		i, ok := pos[key]
		if !ok {
			i = len(ranks)
			pos[key] = i
			ranks = append(ranks, ProductRank{Key: key, Label: truncateLabel(key), ProductName: name, ProductCode: code})
		}
		ranks[i].TotalSellValue += o.TotalSellValue
		ranks[i].TotalPurchaseValueUSD += o.TotalPurchaseValueUSD
	}
	for i := range ranks {
		if opts.Metric == MetricImportValue {
			ranks[i].Value = ranks[i].TotalPurchaseValueUSD
		} else {
			ranks[i].Value = ranks[i].TotalSellValue
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Value > ranks[j].Value })
	if len(ranks) > opts.TopN {
		ranks = ranks[:opts.TopN]
	}
	return ranks, nil
}

func inSegment(o Order, s Segment) bool {
	if s == SegmentAll {
		return true
	}
	product := strings.ToLower(o.Product)
	spare := isSparePart(product)
	switch s {
	case SegmentMachines:
		return product == "" || !spare
	case SegmentMachineSpareParts:
		return product != "" && spare && strings.Contains(product, "machine")
	case SegmentGeneralSpareParts:
		return product != "" && spare && !strings.Contains(product, "machine")
	}
	return false
}

func isSparePart(product string) bool {
	for _, kw := range sparePartKeywords {
		if strings.Contains(product, kw) {
			return true
		}
	}
	return false
}

func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= maxLabelRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxLabelRunes-3]) + "..."
}
