package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/orderdesk/internal/shared"
)

// ImportMode decides how imported orders combine with the collection.
type ImportMode string

const (
	// ImportAppend adds new orders after the existing ones (file upload).
	ImportAppend ImportMode = "append"
	// ImportReplace swaps the whole collection (published sheet load).
	ImportReplace ImportMode = "replace"
)

// Edit kinds reported to audit and metrics.
const (
	EditOrder = "order_edit"
	EditPrice = "price_edit"
)

const (
	defaultHintTimeout = 5 * time.Second
	hintSampleRows     = 3
)

// ImportResult summarises one import.
type ImportResult struct {
	Mode     ImportMode `json:"mode"`
	Accepted int        `json:"accepted"`
	Skipped  int        `json:"skipped"`
	Total    int        `json:"total"`
	Warnings []string   `json:"warnings,omitempty"`
}

// OrderPage is one page of a filtered order listing.
type OrderPage struct {
	Orders     []Order           `json:"orders"`
	Pagination shared.Pagination `json:"pagination"`
}

// PricePage is one page of a filtered price index.
type PricePage struct {
	Entries    []PriceIndexEntry `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
}

// LookupReport carries lookup results plus how the code column was found.
type LookupReport struct {
	Column  string         `json:"column"`
	Source  ColumnSource   `json:"source"`
	Message string         `json:"message"`
	Results []LookupResult `json:"results"`
}

// ServiceDeps wires optional collaborators. Nil ports disable the feature.
type ServiceDeps struct {
	Store           SnapshotStore
	Preferences     PreferenceStore
	Sheets          SheetSource
	Hinter          ColumnHinter
	Audit           AuditPort
	Metrics         MetricsRecorder
	Logger          *slog.Logger
	Ingestor        *Ingestor
	HintTimeout     time.Duration
	PerPage         int
	DefaultSheetURL string
	Now             func() time.Time
}

// Service orchestrates the order collection and its derived views.
type Service struct {
	deps     ServiceDeps
	coll     *Collection
	ingestor *Ingestor
	writer   Writer
	logger   *slog.Logger

	writeMu sync.Mutex
	group   singleflight.Group

	idxMu      sync.Mutex
	idxVersion int64
	idx        []PriceIndexEntry
}

// NewService constructs the order service with an empty collection.
func NewService(deps ServiceDeps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Ingestor == nil {
		deps.Ingestor = NewIngestor(nil, nil)
	}
	if deps.HintTimeout <= 0 {
		deps.HintTimeout = defaultHintTimeout
	}
	if deps.PerPage <= 0 {
		deps.PerPage = shared.DefaultPerPage
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		deps:       deps,
		coll:       NewCollection(nil),
		ingestor:   deps.Ingestor,
		logger:     deps.Logger,
		idxVersion: -1,
	}
}

// Collection exposes the authoritative collection.
func (s *Service) Collection() *Collection {
	return s.coll
}

// Sync reloads the collection when storage holds a newer snapshot.
func (s *Service) Sync(ctx context.Context) error {
	if s.deps.Store == nil {
		return nil
	}
	version, err := s.deps.Store.OrdersVersion(ctx)
	if err != nil {
		return fmt.Errorf("orders: read snapshot version: %w", err)
	}
	if version <= s.coll.StoredVersion() {
		return nil
	}
	orders, version, err := s.deps.Store.LoadOrders(ctx)
	if err != nil {
		return fmt.Errorf("orders: load snapshot: %w", err)
	}
	if s.coll.Restore(orders, version) {
		s.logger.Info("orders snapshot reloaded", slog.Int64("version", version), slog.Int("orders", len(orders)))
		s.observeSize()
	}
	return nil
}

// refresh is Sync for read paths: storage failures fall back to local state.
func (s *Service) refresh(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		s.logger.Warn("orders sync failed", slog.Any("error", err))
	}
}

// write serialises a mutation with its persistence.
func (s *Service) write(ctx context.Context, fn func(*Collection) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.refresh(ctx)
	if err := fn(s.coll); err != nil {
		return err
	}
	s.observeSize()
	if s.deps.Store == nil {
		return nil
	}
	orders, _ := s.coll.Snapshot()
	version, err := s.deps.Store.SaveOrders(ctx, orders)
	if err != nil {
		s.logger.Error("orders snapshot save failed", slog.Any("error", err))
		return nil
	}
	s.coll.Pin(version)
	return nil
}

func (s *Service) observeSize() {
	if s.deps.Metrics != nil {
		s.deps.Metrics.SetOrders(s.coll.Len())
	}
}

// ImportTable ingests t and combines the accepted orders with the collection.
func (s *Service) ImportTable(ctx context.Context, t *Table, mode ImportMode, source string) (ImportResult, error) {
	if mode != ImportAppend && mode != ImportReplace {
		return ImportResult{}, fmt.Errorf("%w: import mode %q", ErrValidation, mode)
	}
	if t == nil {
		return ImportResult{}, ErrNoTable
	}
	hint := s.suggestCodeColumn(ctx, t)
	ingested, err := s.ingestor.Ingest(t, IngestOptions{ProductCodeHint: hint})
	if err != nil {
		return ImportResult{}, err
	}
	err = s.write(ctx, func(c *Collection) error {
		if mode == ImportReplace {
			c.Replace(ingested.Orders)
			return nil
		}
		_, err := c.Append(ingested.Orders...)
		return err
	})
	if err != nil {
		return ImportResult{}, err
	}
	for _, w := range ingested.Warnings {
		s.logger.Warn("orders import warning", slog.String("source", source), slog.String("warning", w))
	}
	s.logger.Info("orders imported",
		slog.String("source", source),
		slog.String("mode", string(mode)),
		slog.Int("accepted", ingested.Accepted),
		slog.Int("skipped", ingested.Skipped),
	)
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveImport(source, ingested.Accepted, ingested.Skipped)
	}
	return ImportResult{
		Mode:     mode,
		Accepted: ingested.Accepted,
		Skipped:  ingested.Skipped,
		Total:    s.coll.Len(),
		Warnings: ingested.Warnings,
	}, nil
}

// suggestCodeColumn asks the hinter under a timeout. Any failure yields "".
func (s *Service) suggestCodeColumn(ctx context.Context, t *Table) string {
	if s.deps.Hinter == nil || t == nil || len(t.Headers) == 0 {
		return ""
	}
	hctx, cancel := context.WithTimeout(ctx, s.deps.HintTimeout)
	defer cancel()
	sample := t.Rows
	if len(sample) > hintSampleRows {
		sample = sample[:hintSampleRows]
	}
	hint, err := s.deps.Hinter.SuggestCodeColumn(hctx, t.Headers, sample)
	if err != nil {
		s.logger.Warn("column hint unavailable", slog.Any("error", err))
		return ""
	}
	return hint
}

// AppendOrder adds one user-entered order.
func (s *Service) AppendOrder(ctx context.Context, values map[Field]any) (Order, error) {
	o, err := s.ingestor.NewOrder(values)
	if err != nil {
		return Order{}, err
	}
	if err := s.write(ctx, func(c *Collection) error {
		_, err := c.Append(o)
		return err
	}); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Clear empties the collection.
func (s *Service) Clear(ctx context.Context) error {
	return s.write(ctx, func(c *Collection) error {
		c.Clear()
		return nil
	})
}

// ListOrders filters by q and returns the requested page.
func (s *Service) ListOrders(ctx context.Context, q string, page int) OrderPage {
	s.refresh(ctx)
	orders, _ := s.coll.Snapshot()
	items, p := Paginate(SearchOrders(orders, q), page, s.deps.PerPage)
	if items == nil {
		items = []Order{}
	}
	return OrderPage{Orders: items, Pagination: p}
}

// ExportOrders returns the collection for export; an empty one is rejected.
func (s *Service) ExportOrders(ctx context.Context) ([]Order, error) {
	s.refresh(ctx)
	orders, _ := s.coll.Snapshot()
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no data to export", ErrValidation)
	}
	return orders, nil
}

// PriceIndex filters the derived price index by q and returns the requested page.
func (s *Service) PriceIndex(ctx context.Context, q string, page int) (PricePage, error) {
	s.refresh(ctx)
	index, err := s.priceIndex(ctx)
	if err != nil {
		return PricePage{}, err
	}
	items, p := Paginate(SearchPriceIndex(index, q), page, s.deps.PerPage)
	if items == nil {
		items = []PriceIndexEntry{}
	}
	return PricePage{Entries: items, Pagination: p}, nil
}

// priceIndex derives the index once per collection version.
func (s *Service) priceIndex(ctx context.Context) ([]PriceIndexEntry, error) {
	orders, version := s.coll.Snapshot()
	s.idxMu.Lock()
	if s.idxVersion == version {
		idx := s.idx
		s.idxMu.Unlock()
		return idx, nil
	}
	s.idxMu.Unlock()

	ch := s.group.DoChan("priceindex:"+strconv.FormatInt(version, 10), func() (interface{}, error) {
		return BuildPriceIndex(orders), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		idx := res.Val.([]PriceIndexEntry)
		s.idxMu.Lock()
		if version > s.idxVersion {
			s.idxVersion = version
			s.idx = idx
		}
		s.idxMu.Unlock()
		return idx, nil
	}
}

// UpdateOrder applies an order-row edit.
func (s *Service) UpdateOrder(ctx context.Context, id string, edit OrderEdit) (Order, error) {
	var before, after Order
	err := s.write(ctx, func(c *Collection) error {
		_, err := c.Mutate(func(orders []Order) ([]Order, error) {
			if pos := indexOf(orders, id); pos >= 0 {
				before = orders[pos]
			}
			next, updated, err := s.writer.ApplyOrderEdit(orders, id, edit)
			after = updated
			return next, err
		})
		return err
	})
	if err != nil {
		return Order{}, err
	}
	s.recordEdit(ctx, EditOrder, before, after)
	return after, nil
}

// UpdatePriceEntry writes a price-index edit onto its source order.
func (s *Service) UpdatePriceEntry(ctx context.Context, sourceOrderID string, edit PriceEdit) (Order, error) {
	var before, after Order
	err := s.write(ctx, func(c *Collection) error {
		_, err := c.Mutate(func(orders []Order) ([]Order, error) {
			if pos := indexOf(orders, sourceOrderID); pos >= 0 {
				before = orders[pos]
			}
			next, updated, err := s.writer.ApplyPriceEdit(orders, sourceOrderID, edit)
			after = updated
			return next, err
		})
		return err
	})
	if err != nil {
		return Order{}, err
	}
	s.recordEdit(ctx, EditPrice, before, after)
	return after, nil
}

func (s *Service) recordEdit(ctx context.Context, kind string, before, after Order) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveEdit(kind)
	}
	if s.deps.Audit == nil {
		return
	}
	rec := EditRecord{Kind: kind, OrderID: after.ID, Before: before, After: after, At: s.deps.Now()}
	if err := s.deps.Audit.Record(ctx, rec); err != nil {
		s.logger.Error("audit record failed", slog.String("kind", kind), slog.String("order_id", after.ID), slog.Any("error", err))
	}
}

// Lookup answers every code of an uploaded lookup table.
func (s *Service) Lookup(ctx context.Context, t *Table) (LookupReport, error) {
	if t == nil || len(t.Rows) == 0 {
		return LookupReport{}, fmt.Errorf("%w: no data found in the uploaded file", ErrValidation)
	}
	s.refresh(ctx)
	hint := s.suggestCodeColumn(ctx, t)
	column, source, ok := ResolveCodeColumn(t.Headers, hint)
	if !ok {
		return LookupReport{}, fmt.Errorf("%w: the uploaded file has no columns", ErrValidation)
	}
	index, err := s.priceIndex(ctx)
	if err != nil {
		return LookupReport{}, err
	}
	results := LookupCodes(index, CodesFromTable(t, column))
	if len(results) == 0 {
		return LookupReport{}, fmt.Errorf("%w: no codes to look up", ErrValidation)
	}
	return LookupReport{Column: column, Source: source, Message: lookupMessage(column, source), Results: results}, nil
}

func lookupMessage(column string, source ColumnSource) string {
	switch source {
	case ColumnFromHint:
		return fmt.Sprintf("Using suggested code column %q.", column)
	case ColumnFromAlias:
		return fmt.Sprintf("Using code column %q.", column)
	default:
		return fmt.Sprintf("No code column recognised; using first column %q.", column)
	}
}

// Summary returns headline metrics over the whole collection.
func (s *Service) Summary(ctx context.Context) Summary {
	s.refresh(ctx)
	orders, _ := s.coll.Snapshot()
	return Summarize(orders)
}

// TopSuppliers ranks suppliers by purchase spend.
func (s *Service) TopSuppliers(ctx context.Context, n int) []SupplierTotal {
	s.refresh(ctx)
	orders, _ := s.coll.Snapshot()
	return TopSuppliers(orders, n)
}

// RankProducts returns the product chart data.
func (s *Service) RankProducts(ctx context.Context, opts RankOptions) ([]ProductRank, error) {
	s.refresh(ctx)
	orders, _ := s.coll.Snapshot()
	return RankProducts(orders, opts)
}

// SheetSettings returns stored sheet settings, defaulting the URL from config.
func (s *Service) SheetSettings(ctx context.Context) (SheetSettings, error) {
	settings := SheetSettings{URL: s.deps.DefaultSheetURL}
	if s.deps.Preferences == nil {
		return settings, nil
	}
	stored, ok, err := s.deps.Preferences.SheetSettings(ctx)
	if err != nil {
		return settings, fmt.Errorf("orders: read sheet settings: %w", err)
	}
	if ok {
		return stored, nil
	}
	return settings, nil
}

// SaveSheetSettings stores the sheet URL and name; the refresh time is kept.
func (s *Service) SaveSheetSettings(ctx context.Context, settings SheetSettings) (SheetSettings, error) {
	current, err := s.SheetSettings(ctx)
	if err != nil {
		return SheetSettings{}, err
	}
	current.URL = settings.URL
	current.SheetName = settings.SheetName
	if s.deps.Preferences == nil {
		return current, nil
	}
	if err := s.deps.Preferences.SaveSheetSettings(ctx, current); err != nil {
		return SheetSettings{}, fmt.Errorf("orders: save sheet settings: %w", err)
	}
	return current, nil
}

// LoadSheet replaces the collection with a published sheet. An empty url uses
// the stored settings. The url is remembered after a successful load.
func (s *Service) LoadSheet(ctx context.Context, url, sheetName string) (ImportResult, error) {
	if s.deps.Sheets == nil {
		return ImportResult{}, fmt.Errorf("%w: sheet loading disabled", ErrNoSheet)
	}
	settings, err := s.SheetSettings(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	if url == "" {
		url, sheetName = settings.URL, settings.SheetName
	}
	if url == "" {
		return ImportResult{}, ErrNoSheet
	}
	table, err := s.deps.Sheets.Fetch(ctx, url, sheetName)
	if err != nil {
		return ImportResult{}, err
	}
	result, err := s.ImportTable(ctx, table, ImportReplace, "sheet")
	if err != nil {
		return ImportResult{}, err
	}
	settings.URL, settings.SheetName = url, sheetName
	settings.LastRefreshAt = s.deps.Now().UTC()
	if s.deps.Preferences != nil {
		if err := s.deps.Preferences.SaveSheetSettings(ctx, settings); err != nil {
			s.logger.Warn("sheet settings save failed", slog.Any("error", err))
		}
	}
	return result, nil
}

// RefreshSheet reloads the configured sheet. ErrNoSheet means nothing to do.
func (s *Service) RefreshSheet(ctx context.Context) (ImportResult, error) {
	result, err := s.LoadSheet(ctx, "", "")
	if errors.Is(err, ErrNoSheet) {
		s.logger.Debug("sheet refresh skipped", slog.Any("reason", err))
	}
	return result, err
}
