package orders

// DefaultAliases maps normalized header keys to canonical fields. It holds the
// expected spelling of every field plus misspellings seen in real order sheets.
var DefaultAliases = map[string]Field{
	"orderno":        FieldOrderNumber,
	"segment":        FieldSegment,
	"subsegment":     FieldSubSegment,
	"customername":   FieldCustomerName,
	"country":        FieldCountry,
	"product":        FieldProduct,
	"bonhoeffercode": FieldProductCode,
	"qty":            FieldQuantity,
	"unitprice":      FieldUnitSellPrice,
	"exportvalue":    FieldTotalSellValue,
	"supplier":       FieldSupplierName,
	"priceinusd":     FieldUnitPurchasePriceUSD,
	"priceusd":       FieldUnitPurchasePriceUSD,
	"importvalue":    FieldTotalPurchaseValueUSD,
	"gp":             FieldGrossProfitUSD,
	"gppercentage":   FieldGrossProfitPercentage,
	"status":         FieldStatus,

	"ordernumber":           FieldOrderNumber,
	"productcode":           FieldProductCode,
	"quantity":              FieldQuantity,
	"suppliername":          FieldSupplierName,
	"purchaseprice":         FieldUnitPurchasePriceUSD,
	"purchasepriceinusd":    FieldUnitPurchasePriceUSD,
	"grossprofit":           FieldGrossProfitUSD,
	"grossprofitpercentage": FieldGrossProfitPercentage,

	"bcode":            FieldProductCode,
	"bonhoeffer":       FieldProductCode,
	"uprice":           FieldUnitSellPrice,
	"itemprice":        FieldUnitSellPrice,
	"sellingprice":     FieldUnitSellPrice,
	"exportval":        FieldTotalSellValue,
	"expvalue":         FieldTotalSellValue,
	"totalexportvalue": FieldTotalSellValue,
	"usdprice":         FieldUnitPurchasePriceUSD,
	"usdollarprice":    FieldUnitPurchasePriceUSD,
	"valueinusd":       FieldUnitPurchasePriceUSD,
	"salespriceusd":    FieldUnitPurchasePriceUSD,
	"importval":        FieldTotalPurchaseValueUSD,
	"impvalue":         FieldTotalPurchaseValueUSD,
	"totalimportvalue": FieldTotalPurchaseValueUSD,

	"subsagment":        FieldSubSegment,
	"bonhorffercode":    FieldProductCode,
	"sellpriceinusd":    FieldUnitSellPrice,
	"totalsellinusd":    FieldTotalSellValue,
	"purchespriceinusd": FieldUnitPurchasePriceUSD,
	"totalpriceinusd":   FieldTotalPurchaseValueUSD,
	"gpinusd":           FieldGrossProfitUSD,
	"gpin":              FieldGrossProfitPercentage,
}

// SchemaMapper resolves normalized header keys against an immutable alias table.
type SchemaMapper struct {
	aliases map[string]Field
}

// NewSchemaMapper copies aliases into a new mapper. A nil map uses DefaultAliases.
// Keys are normalized on the way in so callers may pass raw spellings.
func NewSchemaMapper(aliases map[string]Field) *SchemaMapper {
	if aliases == nil {
		aliases = DefaultAliases
	}
	table := make(map[string]Field, len(aliases))
	for k, f := range aliases {
		table[NormalizeHeader(k)] = f
	}
	return &SchemaMapper{aliases: table}
}

// Lookup maps an already-normalized key. ok is false for unmapped columns.
func (m *SchemaMapper) Lookup(key string) (Field, bool) {
	if key == "" {
		return "", false
	}
	f, ok := m.aliases[key]
	return f, ok
}

// Resolve normalizes a raw header and maps it.
func (m *SchemaMapper) Resolve(header string) (Field, bool) {
	return m.Lookup(NormalizeHeader(header))
}
