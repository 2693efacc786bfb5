package orders

import (
	"fmt"
	"sync"
)

// Collection is the authoritative, ordered set of orders held by the process.
// Every change bumps the local version, which never decreases. The stored
// version tracks the snapshot counter of persistent storage. Price-index
// views are derived from a snapshot and never stored here.
type Collection struct {
	mu      sync.RWMutex
	orders  []Order
	version int64
	stored  int64
}

// NewCollection seeds a collection with a copy of orders.
func NewCollection(orders []Order) *Collection {
	return &Collection{orders: cloneOrders(orders)}
}

// Snapshot returns a copy of the orders together with the current version.
func (c *Collection) Snapshot() ([]Order, int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrders(c.orders), c.version
}

// Version reports the current version.
func (c *Collection) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Len reports how many orders are held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}

// Get resolves an order by identifier.
func (c *Collection) Get(id string) (Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if pos := indexOf(c.orders, id); pos >= 0 {
		return c.orders[pos], true
	}
	return Order{}, false
}

// Source follows a price-index entry back to the order holding its price.
func (c *Collection) Source(entry PriceIndexEntry) (Order, bool) {
	return c.Get(entry.SourceOrderID)
}

// Replace swaps the whole collection.
func (c *Collection) Replace(orders []Order) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = cloneOrders(orders)
	c.version++
	return c.version
}

// Append adds orders after the existing ones. Identifiers must stay unique.
func (c *Collection) Append(orders ...Order) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make(map[string]struct{}, len(c.orders)+len(orders))
	for _, o := range c.orders {
		ids[o.ID] = struct{}{}
	}
	for _, o := range orders {
		if o.ID == "" {
			return c.version, fmt.Errorf("%w: order without identifier", ErrValidation)
		}
		if _, dup := ids[o.ID]; dup {
			return c.version, fmt.Errorf("%w: duplicate order identifier %q", ErrValidation, o.ID)
		}
		ids[o.ID] = struct{}{}
	}
	c.orders = append(c.orders, orders...)
	c.version++
	return c.version, nil
}

// Clear empties the collection.
func (c *Collection) Clear() int64 {
	return c.Replace(nil)
}

// Mutate runs fn against the current orders under the write lock and stores
// its result. Errors leave the collection unchanged.
func (c *Collection) Mutate(fn func([]Order) ([]Order, error)) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(c.orders)
	if err != nil {
		return c.version, err
	}
	c.orders = next
	c.version++
	return c.version, nil
}

// Restore installs orders loaded from persistent storage at storedVersion.
// Versions not newer than the last known stored one are ignored.
func (c *Collection) Restore(orders []Order, storedVersion int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if storedVersion <= c.stored {
		return false
	}
	c.orders = cloneOrders(orders)
	c.stored = storedVersion
	c.version++
	return true
}

// Pin records the version persistent storage assigned to the latest save.
func (c *Collection) Pin(storedVersion int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = storedVersion
}

// StoredVersion reports the last known storage version.
func (c *Collection) StoredVersion() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stored
}

func cloneOrders(orders []Order) []Order {
	if len(orders) == 0 {
		return nil
	}
	out := make([]Order, len(orders))
	copy(out, orders)
	return out
}
