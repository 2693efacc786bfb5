package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

// orderRequest carries raw values keyed by canonical field name.
type orderRequest struct {
	Values map[string]any `json:"values" validate:"required,min=1,dive,keys,orderfield,endkeys"`
}

func (r orderRequest) fieldValues() map[orders.Field]any {
	out := make(map[orders.Field]any, len(r.Values))
	for k, v := range r.Values {
		out[orders.Field(k)] = v
	}
	return out
}

type priceEditRequest struct {
	SupplierName           *string  `json:"supplier_name" validate:"omitempty,max=200"`
	ProductCode            *string  `json:"product_code" validate:"omitempty,max=200"`
	LowestPurchasePriceUSD *float64 `json:"lowest_purchase_price_usd" validate:"omitempty,gte=0"`
}

func (r priceEditRequest) empty() bool {
	return r.SupplierName == nil && r.ProductCode == nil && r.LowestPurchasePriceUSD == nil
}

func (r priceEditRequest) edit() orders.PriceEdit {
	return orders.PriceEdit{
		SupplierName:           r.SupplierName,
		ProductCode:            r.ProductCode,
		LowestPurchasePriceUSD: r.LowestPurchasePriceUSD,
	}
}

type sheetRequest struct {
	URL       string `json:"url" validate:"required,url"`
	SheetName string `json:"sheet_name" validate:"max=100"`
}

type loadSheetRequest struct {
	URL       string `json:"url" validate:"omitempty,url"`
	SheetName string `json:"sheet_name" validate:"max=100"`
}

type sheetResponse struct {
	URL           string     `json:"url"`
	SheetName     string     `json:"sheet_name"`
	LastRefreshAt *time.Time `json:"last_refresh_at,omitempty"`
}

func toSheetResponse(s orders.SheetSettings) sheetResponse {
	resp := sheetResponse{URL: s.URL, SheetName: s.SheetName}
	if !s.LastRefreshAt.IsZero() {
		t := s.LastRefreshAt
		resp.LastRefreshAt = &t
	}
	return resp
}

func newValidator() *validator.Validate {
	v := validator.New()
	known := make(map[string]struct{}, len(orders.Fields))
	for _, f := range orders.Fields {
		known[string(f)] = struct{}{}
	}
	_ = v.RegisterValidation("orderfield", func(fl validator.FieldLevel) bool {
		_, ok := known[fl.Field().String()]
		return ok
	})
	return v
}

// validationError flattens validator output into one ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", orders.ErrValidation, err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "orderfield":
			parts = append(parts, fmt.Sprintf("unknown field %q", fe.Value()))
		case "required", "min":
			parts = append(parts, strings.ToLower(fe.Field())+" is required")
		default:
			parts = append(parts, fmt.Sprintf("%s fails %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", orders.ErrValidation, strings.Join(parts, "; "))
}
