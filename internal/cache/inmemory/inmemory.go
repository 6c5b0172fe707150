// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package inmemory

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/wneessen/folio/internal/cache"
)

// InMemory is a process-local cache backend. Entries are never evicted on their own, stale
// entries stay until they are replaced or the cache is cleared.
type InMemory struct {
	mu    sync.RWMutex
	items map[string]cache.Entry
}

// New creates an empty in-memory cache.
func New() *InMemory {
	return &InMemory{
		items: make(map[string]cache.Entry),
	}
}

// Set stores a copy of the entry under key, replacing any previous entry.
func (i *InMemory) Set(_ context.Context, key string, entry cache.Entry) error {
	entry.Value = bytes.Clone(entry.Value)
	i.mu.Lock()
	i.items[key] = entry
	i.mu.Unlock()
	return nil
}

// Get retrieves an entry or cache.ErrNotFound.
func (i *InMemory) Get(_ context.Context, key string) (cache.Entry, error) {
	i.mu.RLock()
	entry, ok := i.items[key]
	i.mu.RUnlock()

	if !ok {
		return cache.Entry{}, cache.ErrNotFound
	}
	return entry, nil
}

func (i *InMemory) Remove(_ context.Context, key string) error {
	i.mu.Lock()
	delete(i.items, key)
	i.mu.Unlock()
	return nil
}

// Keys returns the populated keys in lexical order.
func (i *InMemory) Keys(_ context.Context) ([]string, error) {
	i.mu.RLock()
	keys := make([]string, 0, len(i.items))
	for k := range i.items {
		keys = append(keys, k)
	}
	i.mu.RUnlock()
	slices.Sort(keys)
	return keys, nil
}

func (i *InMemory) Clear(_ context.Context) error {
	i.mu.Lock()
	clear(i.items)
	i.mu.Unlock()
	return nil
}
