// Package views holds the read-side view plumbing for the orders context:
// an in-process response cache keyed by view name and the invalidators that
// drop stale entries after a write.
package views

import (
	"context"
	"sync"

	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

var _ ports.ViewInvalidator = (*Cache)(nil)

// Cache is an in-process view cache. Entries are grouped by view name so a
// single invalidation drops every variant of that view (all owners, all
// pages) at once.
type Cache struct {
	mu    sync.RWMutex
	views map[string]map[string]any
}

func NewCache() *Cache {
	return &Cache{views: map[string]map[string]any{}}
}

// Get returns the cached value for the given view variant, if present.
func (c *Cache) Get(view, key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, ok := c.views[view]
	if !ok {
		return nil, false
	}
	value, ok := entries[key]
	return value, ok
}

// Put stores a value under a view variant.
func (c *Cache) Put(view, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.views[view]
	if !ok {
		entries = map[string]any{}
		c.views[view] = entries
	}
	entries[key] = value
}

// Invalidate drops every variant of each named view.
func (c *Cache) Invalidate(_ context.Context, views ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, view := range views {
		delete(c.views, view)
	}
}
