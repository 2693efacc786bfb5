package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

const (
	ordersKey        = "orderdesk:orders"
	ordersVersionKey = "orderdesk:orders:version"
	prefsKey         = "orderdesk:prefs"

	prefSheetURL    = "projectOrdersGoogleSheetUrl"
	prefSheetName   = "projectOrdersGoogleSheetName"
	prefLastRefresh = "projectOrdersLastRefreshTime"
)

// Store keeps the order snapshot and user preferences in Redis.
type Store struct {
	client *redis.Client
}

// New wraps a Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// OrdersVersion returns the snapshot counter, zero when nothing was saved.
func (s *Store) OrdersVersion(ctx context.Context) (int64, error) {
	ver, err := s.client.Get(ctx, ordersVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: orders version: %w", err)
	}
	return ver, nil
}

// LoadOrders reads the snapshot and its version in one transaction.
func (s *Store) LoadOrders(ctx context.Context) ([]orders.Order, int64, error) {
	var payload *redis.StringCmd
	var version *redis.StringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		payload = pipe.Get(ctx, ordersKey)
		version = pipe.Get(ctx, ordersVersionKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("store: load orders: %w", err)
	}
	ver, err := version.Int64()
	if errors.Is(err, redis.Nil) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("store: load orders version: %w", err)
	}
	raw, err := payload.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ver, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("store: load orders: %w", err)
	}
	var out []orders.Order
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, 0, fmt.Errorf("store: decode orders: %w", err)
	}
	return out, ver, nil
}

// SaveOrders writes the snapshot and bumps the version atomically.
func (s *Store) SaveOrders(ctx context.Context, list []orders.Order) (int64, error) {
	if list == nil {
		list = []orders.Order{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return 0, fmt.Errorf("store: encode orders: %w", err)
	}
	var incr *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ordersKey, raw, 0)
		incr = pipe.Incr(ctx, ordersVersionKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: save orders: %w", err)
	}
	return incr.Val(), nil
}

// SheetSettings reads the remembered sheet. ok is false when none was saved.
func (s *Store) SheetSettings(ctx context.Context) (orders.SheetSettings, bool, error) {
	values, err := s.client.HGetAll(ctx, prefsKey).Result()
	if err != nil {
		return orders.SheetSettings{}, false, fmt.Errorf("store: sheet settings: %w", err)
	}
	url, ok := values[prefSheetURL]
	if !ok {
		return orders.SheetSettings{}, false, nil
	}
	settings := orders.SheetSettings{URL: url, SheetName: values[prefSheetName]}
	if ts := values[prefLastRefresh]; ts != "" {
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return orders.SheetSettings{}, false, fmt.Errorf("store: parse last refresh: %w", err)
		}
		settings.LastRefreshAt = at
	}
	return settings, true, nil
}

// SaveSheetSettings remembers the sheet and its last refresh time.
func (s *Store) SaveSheetSettings(ctx context.Context, settings orders.SheetSettings) error {
	last := ""
	if !settings.LastRefreshAt.IsZero() {
		last = settings.LastRefreshAt.UTC().Format(time.RFC3339Nano)
	}
	err := s.client.HSet(ctx, prefsKey,
		prefSheetURL, settings.URL,
		prefSheetName, settings.SheetName,
		prefLastRefresh, last,
	).Err()
	if err != nil {
		return fmt.Errorf("store: save sheet settings: %w", err)
	}
	return nil
}
