package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryCatalog is an in-process Catalog.
type MemoryCatalog struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{entries: make(map[string]Entry)}
}

// Get implements Catalog.
func (c *MemoryCatalog) Get(_ context.Context, name string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Put implements Catalog.
func (c *MemoryCatalog) Put(_ context.Context, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[e.Name]; ok && cur.Version >= e.Version {
		return ErrConcurrentModification
	}
	c.entries[e.Name] = e
	return nil
}

// Delete implements Catalog.
func (c *MemoryCatalog) Delete(_ context.Context, name string) error {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
	return nil
}

// Entries returns a snapshot of all entries sorted by name.
func (c *MemoryCatalog) Entries() []Entry {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
