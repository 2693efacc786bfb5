package orders

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ZeroPercent is stored whenever a percentage cell cannot be parsed.
const ZeroPercent = "0.00%"

// numberPrefix matches the leading decimal literal of a cell, so "12 pcs"
// still reads as 12 the way spreadsheet users expect.
var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// Coerce converts a raw cell into the typed value stored for f:
// float64 for numeric fields, string for percentage and text fields.
func Coerce(f Field, raw any) any {
	switch f.Kind() {
	case KindNumber:
		return CoerceNumber(raw)
	case KindPercent:
		return CoercePercent(raw)
	default:
		return CoerceText(raw)
	}
}

// ParseNumber reads raw as a float. Thousands separators are ignored.
// ok is false for absent, non-numeric, NaN or infinite input.
func ParseNumber(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case nil:
		return 0, false
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case string:
		return parseNumericString(strings.ReplaceAll(n, ",", ""))
	case bool:
		return 0, false
	default:
		return parseNumericString(strings.ReplaceAll(fmt.Sprint(n), ",", ""))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseNumericString(s string) (float64, bool) {
	lit := numberPrefix.FindString(strings.TrimSpace(s))
	if lit == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CoerceNumber parses raw and falls back to 0.
func CoerceNumber(raw any) float64 {
	v, _ := ParseNumber(raw)
	return v
}

// CoercePercent renders raw as "<value>%" with two decimals. Numbers are
// formatted directly; strings lose any "%" and commas before parsing.
func CoercePercent(raw any) string {
	switch v := raw.(type) {
	case string:
		n, ok := parseNumericString(strings.NewReplacer("%", "", ",", "").Replace(v))
		if !ok {
			return ZeroPercent
		}
		return FormatPercent(n)
	case nil, bool:
		return ZeroPercent
	default:
		n, ok := ParseNumber(v)
		if !ok {
			return ZeroPercent
		}
		return FormatPercent(n)
	}
}

// FormatPercent formats v with exactly two decimals and a trailing "%".
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ZeroPercent
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// CoerceText stringifies raw and trims surrounding whitespace. Absent input is "".
func CoerceText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Set coerces raw for f and stores it on o.
func (o *Order) Set(f Field, raw any) {
	switch f {
	case FieldOrderNumber:
		o.OrderNumber = CoerceText(raw)
	case FieldSegment:
		o.Segment = CoerceText(raw)
	case FieldSubSegment:
		o.SubSegment = CoerceText(raw)
	case FieldCustomerName:
		o.CustomerName = CoerceText(raw)
	case FieldCountry:
		o.Country = CoerceText(raw)
	case FieldProduct:
		o.Product = CoerceText(raw)
	case FieldProductCode:
		o.ProductCode = CoerceText(raw)
	case FieldSupplierName:
		o.SupplierName = CoerceText(raw)
	case FieldStatus:
		o.Status = CoerceText(raw)
	case FieldQuantity:
		o.Quantity = CoerceNumber(raw)
	case FieldUnitSellPrice:
		o.UnitSellPrice = CoerceNumber(raw)
	case FieldTotalSellValue:
		o.TotalSellValue = CoerceNumber(raw)
	case FieldUnitPurchasePriceUSD:
		o.UnitPurchasePriceUSD = CoerceNumber(raw)
	case FieldTotalPurchaseValueUSD:
		o.TotalPurchaseValueUSD = CoerceNumber(raw)
	case FieldGrossProfitUSD:
		o.GrossProfitUSD = CoerceNumber(raw)
	case FieldGrossProfitPercentage:
		o.GrossProfitPercentage = CoercePercent(raw)
	}
}

// Value returns the stored value of f in its display form.
func (o Order) Value(f Field) string {
	switch f {
	case FieldOrderNumber:
		return o.OrderNumber
	case FieldSegment:
		return o.Segment
	case FieldSubSegment:
		return o.SubSegment
	case FieldCustomerName:
		return o.CustomerName
	case FieldCountry:
		return o.Country
	case FieldProduct:
		return o.Product
	case FieldProductCode:
		return o.ProductCode
	case FieldSupplierName:
		return o.SupplierName
	case FieldStatus:
		return o.Status
	case FieldQuantity:
		return formatNumber(o.Quantity)
	case FieldUnitSellPrice:
		return formatNumber(o.UnitSellPrice)
	case FieldTotalSellValue:
		return formatNumber(o.TotalSellValue)
	case FieldUnitPurchasePriceUSD:
		return formatNumber(o.UnitPurchasePriceUSD)
	case FieldTotalPurchaseValueUSD:
		return formatNumber(o.TotalPurchaseValueUSD)
	case FieldGrossProfitUSD:
		return formatNumber(o.GrossProfitUSD)
	case FieldGrossProfitPercentage:
		return o.GrossProfitPercentage
	}
	return ""
}

// Fields lists canonical fields in display order.
var Fields = []Field{
	FieldStatus,
	FieldOrderNumber,
	FieldSegment,
	FieldSubSegment,
	FieldCustomerName,
	FieldCountry,
	FieldProduct,
	FieldProductCode,
	FieldQuantity,
	FieldUnitSellPrice,
	FieldTotalSellValue,
	FieldSupplierName,
	FieldUnitPurchasePriceUSD,
	FieldTotalPurchaseValueUSD,
	FieldGrossProfitUSD,
	FieldGrossProfitPercentage,
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
