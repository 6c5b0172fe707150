// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package cache defines the storage contract for fetched content documents. Backends only
// store and return entries; deciding whether an entry is still fresh is up to the caller.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache item not found")

// Entry is a cached content document together with the time it was fetched.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Fresh reports whether the entry is younger than ttl at the given time.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// Cache is implemented by all cache backends. Implementations must be safe for concurrent use
// and must replace entries as a whole on Set.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, entry Entry) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}
