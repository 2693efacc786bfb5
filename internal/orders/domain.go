package orders

import "errors"

// Field identifies one canonical Order attribute.
type Field string

// Canonical fields understood by the importer.
const (
	FieldOrderNumber           Field = "order_number"
	FieldSegment               Field = "segment"
	FieldSubSegment            Field = "sub_segment"
	FieldCustomerName          Field = "customer_name"
	FieldCountry               Field = "country"
	FieldProduct               Field = "product"
	FieldProductCode           Field = "product_code"
	FieldQuantity              Field = "quantity"
	FieldUnitSellPrice         Field = "unit_sell_price"
	FieldTotalSellValue        Field = "total_sell_value"
	FieldSupplierName          Field = "supplier_name"
	FieldUnitPurchasePriceUSD  Field = "unit_purchase_price_usd"
	FieldTotalPurchaseValueUSD Field = "total_purchase_value_usd"
	FieldGrossProfitUSD        Field = "gross_profit_usd"
	FieldGrossProfitPercentage Field = "gross_profit_percentage"
	FieldStatus                Field = "status"
)

// FieldKind groups fields by coercion rule.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindPercent
)

// Kind reports how raw cell values for f are coerced.
func (f Field) Kind() FieldKind {
	switch f {
	case FieldQuantity, FieldUnitSellPrice, FieldTotalSellValue,
		FieldUnitPurchasePriceUSD, FieldTotalPurchaseValueUSD, FieldGrossProfitUSD:
		return KindNumber
	case FieldGrossProfitPercentage:
		return KindPercent
	default:
		return KindText
	}
}

// Order is one purchase/sale transaction line.
type Order struct {
	ID                    string  `json:"id"`
	OrderNumber           string  `json:"order_number"`
	Segment               string  `json:"segment"`
	SubSegment            string  `json:"sub_segment"`
	CustomerName          string  `json:"customer_name"`
	Country               string  `json:"country"`
	Product               string  `json:"product"`
	ProductCode           string  `json:"product_code"`
	Quantity              float64 `json:"quantity"`
	UnitSellPrice         float64 `json:"unit_sell_price"`
	TotalSellValue        float64 `json:"total_sell_value"`
	SupplierName          string  `json:"supplier_name"`
	UnitPurchasePriceUSD  float64 `json:"unit_purchase_price_usd"`
	TotalPurchaseValueUSD float64 `json:"total_purchase_value_usd"`
	GrossProfitUSD        float64 `json:"gross_profit_usd"`
	GrossProfitPercentage string  `json:"gross_profit_percentage"`
	Status                string  `json:"status,omitempty"`
}

// PriceKey identifies a supplier/product pair in the price index.
type PriceKey struct {
	Supplier    string
	ProductCode string
}

// PriceIndexEntry is the cheapest observed purchase price for one PriceKey.
// SourceOrderID is a lookup handle into the Collection, never a copy of the order.
type PriceIndexEntry struct {
	Key                    PriceKey `json:"-"`
	SupplierName           string   `json:"supplier_name"`
	ProductCode            string   `json:"product_code"`
	LowestPurchasePriceUSD float64  `json:"lowest_purchase_price_usd"`
	SourceOrderNumber      string   `json:"source_order_number"`
	SourceOrderID          string   `json:"source_order_id"`
}

var (
	// ErrNotFound indicates the edit target does not resolve to an order.
	ErrNotFound = errors.New("orders: not found")
	// ErrNoTable indicates a structurally absent table was passed to the ingestor.
	ErrNoTable = errors.New("orders: table missing")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("orders: invalid input")
	// ErrNoSheet indicates no published sheet URL is configured.
	ErrNoSheet = errors.New("orders: no sheet configured")
)
