package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/orderdesk/internal/orders"
	"github.com/odyssey-erp/orderdesk/internal/platform/httpx"
	"github.com/odyssey-erp/orderdesk/internal/sheets"
	"github.com/odyssey-erp/orderdesk/internal/tabular"
)

const (
	// DefaultMaxUpload bounds multipart uploads when no limit is configured.
	DefaultMaxUpload int64 = 20 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	lookupFilename  = "bonhoeffer_code_lookup.xlsx"
)

var errorRules = []httpx.Rule{
	{Err: orders.ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: orders.ErrValidation, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: orders.ErrNoTable, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: orders.ErrNoSheet, Status: http.StatusConflict, Title: "No Sheet Configured"},
	{Err: tabular.ErrUnsupportedFormat, Status: http.StatusUnsupportedMediaType, Title: "Unsupported File"},
	{Err: tabular.ErrEmptyFile, Status: http.StatusBadRequest, Title: "Empty File"},
	{Err: tabular.ErrMalformed, Status: http.StatusBadRequest, Title: "Unreadable File"},
	{Err: sheets.ErrInvalidURL, Status: http.StatusBadRequest, Title: "Invalid Sheet URL"},
	{Err: sheets.ErrNotPublic, Status: http.StatusBadGateway, Title: "Sheet Not Public"},
	{Err: sheets.ErrUpstream, Status: http.StatusBadGateway, Title: "Sheet Unavailable"},
	{Err: context.DeadlineExceeded, Status: http.StatusGatewayTimeout, Title: "Timeout"},
}

// Handler wires the order desk API.
type Handler struct {
	logger      *slog.Logger
	service     *orders.Service
	validate    *validator.Validate
	maxUpload   int64
	exportLimit func(http.Handler) http.Handler
	now         func() time.Time
}

// NewHandler constructs the API handler. maxUpload <= 0 uses DefaultMaxUpload.
func NewHandler(logger *slog.Logger, service *orders.Service, maxUpload int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Handler{
		logger:      logger,
		service:     service,
		validate:    newValidator(),
		maxUpload:   maxUpload,
		exportLimit: httprate.LimitByIP(30, time.Minute),
		now:         time.Now,
	}
}

// MountRoutes registers the /api routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/orders", h.handleListOrders)
		r.Post("/orders", h.handleCreateOrder)
		r.Delete("/orders", h.handleClearOrders)
		r.Patch("/orders/{id}", h.handleUpdateOrder)
		r.Post("/orders/import", h.handleImport)
		r.Post("/orders/sheet/load", h.handleLoadSheet)

		r.Get("/sheet", h.handleGetSheet)
		r.Put("/sheet", h.handlePutSheet)

		r.Get("/prices", h.handleListPrices)
		r.Patch("/prices/{orderID}", h.handleUpdatePrice)

		r.Get("/suppliers/top", h.handleTopSuppliers)
		r.Get("/dashboard/summary", h.handleSummary)
		r.Get("/dashboard/products", h.handleProducts)

		r.Group(func(r chi.Router) {
			r.Use(h.exportLimit)
			r.Get("/orders/export.xlsx", h.handleExportXLSX)
			r.Get("/orders/export.csv", h.handleExportCSV)
			r.Post("/prices/lookup", h.handleLookup)
		})
	})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page := h.service.ListOrders(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page", 1))
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, err := h.service.AppendOrder(r.Context(), req.fieldValues())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) handleClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), orders.OrderEdit{Values: req.fieldValues()})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	table, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	result, err := h.service.ImportTable(r.Context(), table, orders.ImportAppend, "upload")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleLoadSheet(w http.ResponseWriter, r *http.Request) {
	var req loadSheetRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	result, err := h.service.LoadSheet(r.Context(), req.URL, req.SheetName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.SheetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSheetResponse(settings))
}

func (h *Handler) handlePutSheet(w http.ResponseWriter, r *http.Request) {
	var req sheetRequest
	if !h.decode(w, r, &req) {
		return
	}
	settings, err := h.service.SaveSheetSettings(r.Context(), orders.SheetSettings{
		URL:       strings.TrimSpace(req.URL),
		SheetName: strings.TrimSpace(req.SheetName),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSheetResponse(settings))
}

func (h *Handler) handleListPrices(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.PriceIndex(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page", 1))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceEditRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.empty() {
		h.fail(w, r, fmt.Errorf("%w: nothing to update", orders.ErrValidation))
		return
	}
	o, err := h.service.UpdatePriceEntry(r.Context(), chi.URLParam(r, "orderID"), req.edit())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) handleTopSuppliers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.TopSuppliers(r.Context(), queryInt(r, "n", orders.DefaultTopSuppliers)))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Summary(r.Context()))
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ranks, err := h.service.RankProducts(r.Context(), orders.RankOptions{
		Segment:  orders.Segment(q.Get("segment")),
		Metric:   orders.Metric(q.Get("metric")),
		Grouping: orders.Grouping(q.Get("group")),
		TopN:     queryInt(r, "top", 0),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ranks)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ExportOrders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Attachment(w, xlsxContentType, h.exportName("xlsx"))
	if err := tabular.WriteOrdersXLSX(w, list); err != nil {
		h.logger.Error("orders xlsx export failed", slog.Any("error", err))
	}
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ExportOrders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Attachment(w, "text/csv; charset=utf-8", h.exportName("csv"))
	if err := tabular.WriteOrdersCSV(w, list); err != nil {
		h.logger.Error("orders csv export failed", slog.Any("error", err))
	}
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	table, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	report, err := h.service.Lookup(r.Context(), table)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		httpx.JSON(w, http.StatusOK, report)
		return
	}
	w.Header().Set("X-Lookup-Column", report.Column)
	httpx.Attachment(w, xlsxContentType, lookupFilename)
	if err := tabular.WriteLookupXLSX(w, report.Results); err != nil {
		h.logger.Error("lookup export failed", slog.Any("error", err))
	}
}

// readUpload parses the multipart "file" field into a table.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*orders.Table, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
			h.fail(w, r, fmt.Errorf("%w: limit is %d bytes", httpx.ErrTooLarge, h.maxUpload))
			return nil, false
		}
		h.fail(w, r, fmt.Errorf("%w: expected multipart form with a file field", orders.ErrValidation))
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: file field missing", orders.ErrValidation))
		return nil, false
	}
	defer func() {
		_ = file.Close()
	}()
	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	table, err := tabular.Parse(header.Filename, data)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return table, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		h.fail(w, r, err)
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		h.fail(w, r, validationError(err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	level := slog.LevelWarn
	if !known(err) {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.RespondError(w, err, errorRules...)
}

func known(err error) bool {
	for _, rule := range errorRules {
		if errors.Is(err, rule.Err) {
			return true
		}
	}
	return errors.Is(err, httpx.ErrValidation)
}

func (h *Handler) exportName(ext string) string {
	return fmt.Sprintf("orders_export_%s.%s", h.now().UTC().Format("2006-01-02"), ext)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
